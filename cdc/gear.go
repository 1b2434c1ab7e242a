package cdc

// Gear maps each byte value to a pseudo-random 32-bit constant. The
// values are fixed: chunk boundaries, and therefore deduplication
// across stores, depend on them never changing.
var Gear = [256]uint64{
	0x299F55E2, 0xBDD69556, 0xE775AE2A, 0xDF525E58,
	0x6632CC15, 0xC87C9665, 0x365891F2, 0x003DADE2,
	0x1FA71FDF, 0xF817958E, 0x4FD50EAE, 0x4B97D33D,
	0xF8191B11, 0x31BC07B4, 0xE8BD9E8F, 0x4EE80023,
	0x9500B7C3, 0x8742ABF0, 0xCE9B8C35, 0xDBC4DACD,
	0x83E514BB, 0xEC61D975, 0x8A5D247B, 0x84FB0DAB,
	0x1ED475FD, 0xE4D29261, 0x67C649F4, 0x3BD01343,
	0xA942E227, 0x9CBE2264, 0xEDC6809B, 0xCEC4039A,
	0x5C779B39, 0xA83FEEA5, 0x6EED6271, 0xCBF2E6FD,
	0x0BE08D5D, 0xE8952D87, 0xCACE34D0, 0x4B9B6533,
	0xDE81018A, 0x674FCA19, 0x15C2E2CF, 0x0DEB1045,
	0x40B984F1, 0xEEE719CA, 0xC75C111B, 0x7C3EFBBB,
	0x6AD57149, 0x4E634677, 0x9F59D3B6, 0xBDC10E11,
	0xBD633A16, 0x01B28CCC, 0x5AD230E3, 0xB5731843,
	0xB96E64B4, 0x8C97CB72, 0x1ECD576A, 0xEA75AFD5,
	0x44C8C217, 0xA1C658FF, 0x031E93D5, 0x928D7B1F,
	0xE2E44C1C, 0x133ADA4E, 0x8867BE92, 0x1A3C4809,
	0x19C07BAF, 0x22429648, 0xA3A8C192, 0x8C2128CE,
	0x708F9A3C, 0x3BA8325F, 0x6C2FD81D, 0x5C400581,
	0x96D5CCD8, 0xFFD76830, 0x9278725B, 0x46ED96DE,
	0x506FECEB, 0xE54001B2, 0x93F9E47D, 0x08AF90BF,
	0xAB5C81E2, 0xAC7717E5, 0x0B3B6615, 0xCDEBA5B9,
	0x5D630CED, 0x90DCF3E3, 0xBB22F7B1, 0x20AB78FE,
	0xD9303167, 0xF2A66DE2, 0x23A485F4, 0x98EA7A5C,
	0xD3347E98, 0xABFA6CB8, 0xD143DD17, 0x36734BDF,
	0xF386317C, 0x04328BB7, 0x43BB37F6, 0x529E6DFA,
	0xA9150615, 0x50A0E8E6, 0x6E92F343, 0x3DAEB35A,
	0x60644C82, 0xCDF1EFFC, 0xA24E2643, 0x660BB880,
	0x82C7C5D9, 0xC030BE84, 0xD0684022, 0xB8D36940,
	0x0761F0E0, 0xD85FF70B, 0x8825FE8A, 0x5103630F,
	0x09995F45, 0x122B3C50, 0x7D543431, 0x6EC9815B,
	0x245DCE27, 0xC71E112D, 0xC1FADEE9, 0xF3E34E11,
	0x10CBF31D, 0x5E1F4EC3, 0x8248D9D0, 0x58D3DFB5,
	0xDD16251B, 0x45FE9550, 0xBCADEEE4, 0x94DEBC12,
	0xFC0CADB4, 0x822AC402, 0x4AACCF07, 0x0CF2A4CF,
	0xD0B1DC4F, 0x8B606345, 0x3134FB50, 0x0F042AB6,
	0xF33F287D, 0x9074D480, 0xEB6AFB62, 0xF8DFE80B,
	0xB165B1E2, 0xA105F38B, 0x9AE40B08, 0x11C141A8,
	0xDC8DDB73, 0x69BDA879, 0xD9788D2B, 0x4D135725,
	0xA45849E3, 0xE9315B6B, 0xA9219C72, 0x04E86B7C,
	0x98B1F0E8, 0x54E6B51A, 0xFC24A9AA, 0x35A025EF,
	0x6833542B, 0x68094C42, 0x07C7469D, 0xC4D6F68D,
	0xDB416488, 0xD3ADA611, 0xAB7938C8, 0x73F1C79D,
	0x9D2AA24D, 0x3D9B132E, 0xEC96D254, 0xDAFFFB3A,
	0x99A28FB8, 0xF317AFEF, 0xF52DFFFF, 0x13BD6CE4,
	0xD00017CA, 0x33A0F348, 0x798E5561, 0x4509087B,
	0x6A0DCC98, 0x023E3D78, 0xF0979529, 0x23607D3C,
	0x28B21591, 0x595F3B70, 0xD7BCEB2D, 0xCB910802,
	0xFB52CF27, 0x19D1D58C, 0xC159C403, 0x2FEF8B49,
	0x3CB0F724, 0x6A9CD8FF, 0x59457E23, 0x8E2B5DE4,
	0xA0E22746, 0x313A3698, 0x83A7B78A, 0x5D0F64AA,
	0xC8C5AB8C, 0xC538DB90, 0x433A679A, 0x7D8AF2F1,
	0x42CB907E, 0x22E9D7E5, 0x2FF82EAA, 0x290378E0,
	0x43628E2F, 0xFDBDE430, 0xCA7CD66D, 0x1A622CDF,
	0x958E7EB1, 0x881AA82A, 0x13C11118, 0x5D00FBAA,
	0x51AEA4C2, 0x2824DB0D, 0xAEFF9034, 0xBBACC422,
	0xC59E8C7E, 0x4C314374, 0x8A0C25A7, 0xCB35DA01,
	0x0FBE374D, 0x72244D06, 0xEF6F784D, 0xDC37AFD6,
	0xEBFC1FF5, 0x60D73D3B, 0xAC5EBE71, 0xB5010A90,
	0x2D10E03B, 0x6609C27F, 0xD0183D3F, 0x885EF040,
	0x48965C38, 0x9DA3179C, 0x9383838F, 0x0689BACE,
	0x3B07B662, 0x4CBD97EE, 0x37AC1D11, 0x27F8FF9B,
	0xFA656F8D, 0xAA00B5AA, 0xCB9C3AC9, 0xFAC2ED7E,
	0x88C97B86, 0xCC1EFFD4, 0x1D75C2EB, 0x9527DB89,
}
