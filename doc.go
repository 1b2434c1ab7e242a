/*

Chunkbase is a deduplicating file-backup engine.  Files are split
into content-defined chunks, each chunk is fingerprinted, and chunks
are stored once in a content-addressed store no matter how many files
or snapshots contain them.

Vocabulary:

- chunk: contiguous byte range of one file; deduplication atom
- checksum: 128-bit fingerprint of a chunk's content, as 32 uppercase
	hex characters; names the chunk's file in the store
- cutter: finds chunk boundaries in an in-memory buffer (package cdc)
- portion: bounded slice of a large file held in memory at one time
- carry-over: unconsumed tail of a portion, prepended to the next one
	so boundary decisions near the seam see enough bytes
- store: directory of chunk files named by checksum (package db)
- catalog: records which ordered chunks make up each backed-up file
	(package catalog)
- pending: a chunk whose checksum has not been computed yet

*/

package chunkbase
