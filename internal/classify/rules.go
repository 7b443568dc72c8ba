package classify

// Tier labels
const (
	TierGrandSlam   = "Grand Chelem"
	TierMasters1000 = "Masters 1000"
	TierATP500      = "ATP 500"
	TierATP250      = "ATP 250"
	TierGeneric     = "ATP Tournament"
)

// Surfaces
const (
	SurfaceHard       = "Hard"
	SurfaceClay       = "Clay"
	SurfaceGrass      = "Grass"
	SurfaceCarpet     = "Carpet"
	SurfaceIndoorHard = "Indoor Hard"
)

// Importance thresholds used by the provider's tournament_importance score
const (
	importanceGrandSlam = 2000
	importanceMasters   = 1000
	importance500       = 500
	importance250       = 250
)

// excludedKeywords reject a record outright, even when it also matches the
// allow-list
var excludedKeywords = []string{
	"wta",
	"women",
	"woman",
	"ladies",
	"girls",
	"junior",
	"boys",
	"doubles",
	"mixed",
	"wheelchair",
	"legends",
	"senior",
	"exhibition",
	"challenger",
	"futures",
	"itf",
	"qualifying",
	"qualification",
	"wildcard",
	"wild card",
	"utr",
	"college",
	"ncaa",
	"team cup",
	"laver cup",
	"davis cup",
	"united cup",
	"hopman",
}

var grandSlams = []string{
	"australian open",
	"roland garros",
	"roland-garros",
	"french open",
	"wimbledon",
	"us open",
}

var masters1000 = []string{
	"indian wells",
	"bnp paribas open",
	"miami open",
	"monte carlo",
	"monte-carlo",
	"mutua madrid",
	"madrid open",
	"internazionali",
	"italian open",
	"rome",
	"national bank open",
	"canadian open",
	"rogers cup",
	"cincinnati",
	"western & southern",
	"shanghai",
	"paris masters",
	"rolex paris",
	"atp finals",
}

var atp500 = []string{
	"rotterdam",
	"rio open",
	"rio de janeiro",
	"dubai",
	"acapulco",
	"doha",
	"barcelona",
	"munich",
	"halle",
	"queen's club",
	"queens club",
	"hamburg",
	"citi open",
	"washington",
	"beijing",
	"china open",
	"tokyo",
	"japan open",
	"vienna",
	"basel",
	"swiss indoors",
}

var atp250 = []string{
	"brisbane",
	"adelaide",
	"auckland",
	"hong kong",
	"montpellier",
	"marseille",
	"buenos aires",
	"delray beach",
	"santiago",
	"houston",
	"marrakech",
	"estoril",
	"geneva",
	"stuttgart",
	"s-hertogenbosch",
	"mallorca",
	"eastbourne",
	"newport",
	"bastad",
	"gstaad",
	"umag",
	"kitzbuhel",
	"atlanta",
	"los cabos",
	"winston-salem",
	"chengdu",
	"hangzhou",
	"almaty",
	"antwerp",
	"stockholm",
	"metz",
	"belgrade",
}

// keywords that, together with a sufficient importance score, mark an
// event as ATP tour level
var atpKeywords = []string{
	"atp masters",
	"atp 1000",
	"atp 500",
	"atp 250",
}
