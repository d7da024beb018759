package kitchen

type seedEntry struct {
	name  string
	base  BaseUnit
	units []UnitFactor
}

func per(unit string, factor float64) UnitFactor {
	return UnitFactor{Unit: unit, Factor: factor}
}

// seedEntries is the curated conversion set loaded by DefaultTable.
var seedEntries = []seedEntry{
	// dry goods
	{"beras", Gram, []UnitFactor{per("kg", 1000), per("porsi", 150), per("gelas", 200), per("cangkir", 185)}},
	{"tepung terigu", Gram, []UnitFactor{per("kg", 1000), per("sdm", 8), per("sdt", 3), per("gelas", 125), per("cangkir", 125)}},
	{"gula pasir", Gram, []UnitFactor{per("kg", 1000), per("sdm", 12), per("sdt", 4), per("gelas", 200), per("cangkir", 200)}},
	{"garam", Gram, []UnitFactor{per("kg", 1000), per("sdm", 18), per("sdt", 6), per("sendok teh", 6), per("sendok makan", 18)}},
	{"bawang merah", Gram, []UnitFactor{per("kg", 1000), per("siung", 15), per("buah", 30), per("butir", 15)}},
	{"bawang putih", Gram, []UnitFactor{per("kg", 1000), per("siung", 5), per("buah", 25)}},
	{"telur ayam", Gram, []UnitFactor{per("kg", 1000), per("butir", 60), per("buah", 60)}},
	{"cabai merah", Gram, []UnitFactor{per("kg", 1000), per("buah", 15), per("batang", 15)}},
	{"tomat", Gram, []UnitFactor{per("kg", 1000), per("buah", 100)}},

	// liquids
	{"minyak goreng", ML, []UnitFactor{per("liter", 1000), per("sdm", 15), per("sdt", 5), per("gelas", 250), per("cangkir", 250)}},
	{"air", ML, []UnitFactor{per("liter", 1000), per("sdm", 15), per("sdt", 5), per("gelas", 250), per("cangkir", 250)}},
	{"santan", ML, []UnitFactor{per("liter", 1000), per("sdm", 15), per("sdt", 5), per("gelas", 250), per("kemasan", 200)}},
	{"kecap manis", ML, []UnitFactor{per("liter", 1000), per("sdm", 15), per("sdt", 5)}},
	{"saus tiram", ML, []UnitFactor{per("liter", 1000), per("sdm", 15), per("sdt", 5)}},

	// spices
	{"merica", Gram, []UnitFactor{per("kg", 1000), per("sdt", 2), per("sdm", 6)}},
	{"jahe", Gram, []UnitFactor{per("kg", 1000), per("cm", 10), per("ruas", 15)}},
	{"kunyit", Gram, []UnitFactor{per("kg", 1000), per("cm", 8), per("ruas", 12)}},
	{"lengkuas", Gram, []UnitFactor{per("kg", 1000), per("cm", 12), per("ruas", 20)}},
}
