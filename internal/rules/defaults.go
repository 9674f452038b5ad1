package rules

// Defaults builds the built-in rule table.
func Defaults() *Table {
	t := &Table{
		builtins:  make(map[string]Builtin, len(defaultBuiltins)),
		modules:   make(map[string]string, len(defaultModules)),
		operators: make(map[string]string, len(defaultOperators)),
		sigils: map[string]SigilStrategy{
			"$": {Mode: SigilStrip},
			"@": {Mode: SigilStrip},
			"%": {Mode: SigilStrip},
		},
		options: DefaultOptions(),
	}
	for k, v := range defaultBuiltins {
		t.builtins[k] = v.clone()
	}
	for k, v := range defaultModules {
		t.modules[k] = v
	}
	for k, v := range defaultOperators {
		t.operators[k] = v
	}
	return t
}

func DefaultOptions() Options {
	return Options{
		PreserveComments:       true,
		ConvertPODToDocstrings: true,
		EmitHeader:             true,
		FStringInterpolation:   true,
		StrictFallback:         false,
		Indent:                 4,
	}
}

var defaultBuiltins = map[string]Builtin{
	// strings
	"length":    {Template: "len({0})"},
	"uc":        {Template: "{0}.upper()"},
	"lc":        {Template: "{0}.lower()"},
	"ucfirst":   {Template: "{0}[:1].upper() + {0}[1:]"},
	"lcfirst":   {Template: "{0}[:1].lower() + {0}[1:]"},
	"index":     {Template: "{0}.find({rest})"},
	"rindex":    {Template: "{0}.rfind({rest})"},
	"join":      {Template: "{0}.join(map(str, {list1}))"},
	"reverse":   {Template: "list(reversed({list0}))"},
	"chomp":     {Template: "{0}.rstrip(\"\\n\")", Mutates: true},
	"chop":      {Template: "{0}[:-1]", Mutates: true},
	"quotemeta": {Template: "re.escape({0})", Imports: []string{"re"}},
	"sprintf":   {Template: "{0} % ({rest},)", Nullary: "\"\""},
	"chr":       {Template: "chr({0})"},
	"ord":       {Template: "ord({0})"},

	// numbers
	"abs":   {Template: "abs({0})"},
	"int":   {Template: "int({0})"},
	"hex":   {Template: "int({0}, 16)"},
	"oct":   {Template: "int({0}, 8)"},
	"sqrt":  {Template: "math.sqrt({0})", Imports: []string{"math"}},
	"sin":   {Template: "math.sin({0})", Imports: []string{"math"}},
	"cos":   {Template: "math.cos({0})", Imports: []string{"math"}},
	"exp":   {Template: "math.exp({0})", Imports: []string{"math"}},
	"log":   {Template: "math.log({0})", Imports: []string{"math"}},
	"atan2": {Template: "math.atan2({0}, {1})", Imports: []string{"math"}},
	"floor": {Template: "math.floor({0})", Imports: []string{"math"}},
	"ceil":  {Template: "math.ceil({0})", Imports: []string{"math"}},
	"rand":  {Template: "random.random() * {0}", Nullary: "random.random()", Imports: []string{"random"}},
	"srand": {Template: "random.seed({args})", Imports: []string{"random"}},

	// lists and hashes
	"keys":   {Template: "list({0}.keys())"},
	"values": {Template: "list({0}.values())"},
	"each":   {Template: "{0}.items()"},
	"max":    {Template: "max({list0})"},
	"min":    {Template: "min({list0})"},
	"sum":    {Template: "sum({list0})"},
	"sum0":   {Template: "sum({list0})"},
	"uniq":   {Template: "list(dict.fromkeys({list0}))"},
	"shuffle": {
		Template: "random.sample({list0}, len({list0}))",
		Imports:  []string{"random"},
	},

	// process and time
	"time":      {Template: "int(time.time())", Imports: []string{"time"}},
	"localtime": {Template: "time.localtime({args})", Imports: []string{"time"}},
	"gmtime":    {Template: "time.gmtime({args})", Imports: []string{"time"}},
	"sleep":     {Template: "time.sleep({0})", Imports: []string{"time"}},
	"exit":      {Template: "sys.exit({0})", Nullary: "sys.exit(0)", Imports: []string{"sys"}},
	"system": {
		Template: "subprocess.call({0}, shell=True)",
		Variadic: "subprocess.call([{args}])",
		Imports:  []string{"subprocess"},
	},
	"fork":    {Template: "os.fork()", Imports: []string{"os"}},
	"wait":    {Template: "os.wait()", Imports: []string{"os"}},
	"getppid": {Template: "os.getppid()", Imports: []string{"os"}},
	"kill":    {Template: "os.kill({1}, {0})", Imports: []string{"os"}},
	"alarm":   {Template: "signal.alarm({0})", Imports: []string{"signal"}},

	// filesystem
	"unlink":    {Template: "os.remove({0})", Imports: []string{"os"}},
	"mkdir":     {Template: "os.mkdir({0})", Imports: []string{"os"}},
	"rmdir":     {Template: "os.rmdir({0})", Imports: []string{"os"}},
	"rename":    {Template: "os.rename({0}, {1})", Imports: []string{"os"}},
	"chmod":     {Template: "os.chmod({1}, {0})", Imports: []string{"os"}},
	"chdir":     {Template: "os.chdir({0})", Imports: []string{"os"}},
	"cwd":       {Template: "os.getcwd()", Imports: []string{"os"}},
	"getcwd":    {Template: "os.getcwd()", Imports: []string{"os"}},
	"basename":  {Template: "os.path.basename({0})", Imports: []string{"os"}},
	"dirname":   {Template: "os.path.dirname({0})", Imports: []string{"os"}},
	"catfile":   {Template: "os.path.join({args})", Imports: []string{"os"}},
	"make_path": {Template: "os.makedirs({0}, exist_ok=True)", Imports: []string{"os"}},
	"mkpath":    {Template: "os.makedirs({0}, exist_ok=True)", Imports: []string{"os"}},
	"copy":      {Template: "shutil.copy({0}, {1})", Imports: []string{"shutil"}},
	"move":      {Template: "shutil.move({0}, {1})", Imports: []string{"shutil"}},

	// library functions
	"Dumper":            {Template: "pprint.pformat({0})", Imports: []string{"pprint"}},
	"encode_json":       {Template: "json.dumps({0})", Imports: []string{"json"}},
	"decode_json":       {Template: "json.loads({0})", Imports: []string{"json"}},
	"dclone":            {Template: "copy.deepcopy({0})", Imports: []string{"copy"}},
	"timelocal":         {Template: "time.mktime(({5}, {4} + 1, {3}, {2}, {1}, {0}, 0, 0, -1))", Imports: []string{"time"}},
	"looks_like_number": {Template: "looks_like_number({0})"},
	"blessed":           {Template: "perl_blessed({0})"},
	"ref":               {Template: "perl_ref({0})"},
}

var defaultModules = map[string]string{
	"strict":      "",
	"warnings":    "",
	"utf8":        "",
	"feature":     "",
	"vars":        "",
	"lib":         "",
	"FindBin":     "",
	"diagnostics": "",
	"integer":     "",
	"Exporter":    "",
	"Carp":        "",
	"IO::File":    "",
	"IO::Handle":  "",
	"List::Util":  "",
	"Scalar::Util": "",

	"Data::Dumper":   "import pprint",
	"Getopt::Long":   "import argparse",
	"File::Basename": "import os",
	"File::Spec":     "import os",
	"File::Path":     "import os",
	"Cwd":            "import os",
	"File::Copy":     "import shutil",
	"Time::Local":    "import time",
	"Time::HiRes":    "import time",
	"JSON":           "import json",
	"JSON::PP":       "import json",
	"POSIX":          "import math",
	"Storable":       "import copy",
}

var defaultOperators = map[string]string{
	"eq":  "==",
	"ne":  "!=",
	"lt":  "<",
	"gt":  ">",
	"le":  "<=",
	"ge":  ">=",
	"==":  "==",
	"!=":  "!=",
	"<":   "<",
	">":   ">",
	"<=":  "<=",
	">=":  ">=",
	".":   "+",
	"x":   "*",
	"&&":  "and",
	"||":  "or",
	"and": "and",
	"or":  "or",
	"!":   "not",
	"not": "not",
	"+":   "+",
	"-":   "-",
	"*":   "*",
	"/":   "/",
	"%":   "%",
	"**":  "**",
	"&":   "&",
	"|":   "|",
	"^":   "^",
	"<<":  "<<",
	">>":  ">>",
	"~":   "~",
}
