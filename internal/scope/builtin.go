package scope

// Fern's implicit default imports, mirrored by every module before its
// explicit import list is merged in.
var defaultImports = []defaultImport{
	{module: "Basics", exposeAll: true},
	{module: "List", expose: []string{"::"}},
	{module: "Maybe", expose: []string{"Just", "Nothing"}},
	{module: "Result", expose: []string{"Ok", "Err"}},
	{module: "String"},
	{module: "Char"},
	{module: "Tuple"},
	{module: "Debug"},
	{module: "Platform"},
	{module: "Platform.Cmd", alias: "Cmd"},
	{module: "Platform.Sub", alias: "Sub"},
}

type defaultImport struct {
	module    string
	alias     string
	expose    []string
	exposeAll bool
}

// knownMembers lists the members of core modules whose "exposing (..)"
// surface is known to the engine. A bare name resolves through an
// expose-all import only when the module is listed here; expose-all
// imports of unknown modules never resolve, which keeps the engine from
// misattributing lookalike names.
var knownMembers = map[string][]string{
	"Basics": {
		"identity", "always", "not", "min", "max", "clamp", "abs",
		"negate", "sqrt", "toFloat", "round", "floor", "ceiling",
		"truncate", "compare", "modBy", "remainderBy", "isNaN",
		"True", "False", "LT", "EQ", "GT",
		"&&", "||", "==", "/=", "+", "-", "*", "/", "//", "^", "++",
		"<", ">", "<=", ">=", "|>", "<|", ">>", "<<",
	},
	"List": {
		"map", "filter", "filterMap", "foldl", "foldr", "all", "any",
		"concat", "concatMap", "append", "reverse", "length", "member",
		"head", "tail", "take", "drop", "singleton", "repeat", "range",
		"sum", "product", "maximum", "minimum", "sort", "sortBy",
		"sortWith", "intersperse", "indexedMap", "isEmpty", "::",
	},
	"String": {
		"map", "filter", "foldl", "foldr", "reverse", "length", "isEmpty",
		"append", "concat", "join", "split", "words", "lines", "toUpper",
		"toLower", "trim", "repeat", "fromChar", "cons", "uncons",
		"toList", "fromList", "contains", "startsWith", "endsWith",
	},
	"Maybe": {
		"map", "map2", "andThen", "withDefault", "Just", "Nothing",
	},
	"Result": {
		"map", "mapError", "andThen", "withDefault", "toMaybe",
		"fromMaybe", "Ok", "Err",
	},
	"Tuple": {"first", "second", "pair", "mapFirst", "mapSecond", "mapBoth"},
}
