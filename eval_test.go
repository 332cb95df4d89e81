package hazel_test

import (
	"testing"

	"github.com/hazel-lang/hazel"
	"github.com/hazel-lang/hazel/testutils"
)

// TestOperators tests arithmetic, comparison and logical operators.
func TestOperators(t *testing.T) {
	cases := map[string]testutils.SourceTestCase{
		"addInts":        {Source: testutils.Main(`return 1 + 2`), Pass: testutils.PassEqual(hazel.Int(3))},
		"addFloats":      {Source: testutils.Main(`return 1.5 + 2.5`), Pass: testutils.PassEqual(hazel.Float(4))},
		"addMixed":       {Source: testutils.Main(`return 1 + 0.5`), Pass: testutils.PassEqual(hazel.Float(1.5))},
		"concatStrings":  {Source: testutils.Main(`return "foo" + "bar"`), Pass: testutils.PassEqual(hazel.Str("foobar"))},
		"concatRenders":  {Source: testutils.Main(`return "n=" + 42`), Pass: testutils.PassEqual(hazel.Str("n=42"))},
		"concatArrays":   {Source: testutils.Main(`return [1] + [2, 3]`), Pass: testutils.PassEqual(hazel.NewArray(hazel.Int(1), hazel.Int(2), hazel.Int(3)))},
		"subtract":       {Source: testutils.Main(`return 10 - 4`), Pass: testutils.PassEqual(hazel.Int(6))},
		"multiply":       {Source: testutils.Main(`return 6 * 7`), Pass: testutils.PassEqual(hazel.Int(42))},
		"divideIsFloat":  {Source: testutils.Main(`return 6 / 3`), Pass: testutils.PassEqual(hazel.Float(2))},
		"divideHalves":   {Source: testutils.Main(`return 7 / 2`), Pass: testutils.PassEqual(hazel.Float(3.5))},
		"divideByZero":   {Source: testutils.Main(`return 1 / 0`), Pass: testutils.PassFailure(hazel.DivisionFailure)},
		"moduloByZero":   {Source: testutils.Main(`return 1 % 0`), Pass: testutils.PassFailure(hazel.DivisionFailure)},
		"modulo":         {Source: testutils.Main(`return 7 % 3`), Pass: testutils.PassEqual(hazel.Int(1))},
		"moduloFloors":   {Source: testutils.Main(`return -7 % 3`), Pass: testutils.PassEqual(hazel.Int(2))},
		"moduloNegative": {Source: testutils.Main(`return 7 % -3`), Pass: testutils.PassEqual(hazel.Int(-2))},
		"unaryMinus":     {Source: testutils.Main(`return -3 * 2`), Pass: testutils.PassEqual(hazel.Int(-6))},
		"precedence":     {Source: testutils.Main(`return 2 + 3 * 4`), Pass: testutils.PassEqual(hazel.Int(14))},
		"parens":         {Source: testutils.Main(`return (2 + 3) * 4`), Pass: testutils.PassEqual(hazel.Int(20))},
		"eqNumeric":      {Source: testutils.Main(`return 1 == 1.0`), Pass: testutils.PassEqual(hazel.Bool(true))},
		"eqDeep":         {Source: testutils.Main(`return [1, "a"] == [1, "a"]`), Pass: testutils.PassEqual(hazel.Bool(true))},
		"neq":            {Source: testutils.Main(`return 1 != 2`), Pass: testutils.PassEqual(hazel.Bool(true))},
		"less":           {Source: testutils.Main(`return 1 < 2`), Pass: testutils.PassEqual(hazel.Bool(true))},
		"lessEq":         {Source: testutils.Main(`return 2 <= 2`), Pass: testutils.PassEqual(hazel.Bool(true))},
		"greater":        {Source: testutils.Main(`return 3 > 2`), Pass: testutils.PassEqual(hazel.Bool(true))},
		"compareString":  {Source: testutils.Main(`return "a" < "b"`), Pass: testutils.PassFailure(hazel.TypeFailure)},
		"not":            {Source: testutils.Main(`return !false`), Pass: testutils.PassEqual(hazel.Bool(true))},
		"notNonBool":     {Source: testutils.Main(`return !1`), Pass: testutils.PassFailure(hazel.TypeFailure)},
		"andTrue":        {Source: testutils.Main(`return true && 5`), Pass: testutils.PassEqual(hazel.Int(5))},
		"andFalse":       {Source: testutils.Main(`return 0 && 5`), Pass: testutils.PassEqual(hazel.Int(0))},
		"orTrue":         {Source: testutils.Main(`return 0 || 5`), Pass: testutils.PassEqual(hazel.Int(5))},
		"orFirst":        {Source: testutils.Main(`return 3 || 5`), Pass: testutils.PassEqual(hazel.Int(3))},
		"andShortCircuit": {
			Source: testutils.Main("hit = false\ncheck = () => {\n  hit = true\n  return true\n}\nfalse && check()\nreturn hit"),
			Pass:   testutils.PassEqual(hazel.Bool(false)),
		},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
}

// TestVariables tests assignment, scoping and increments.
func TestVariables(t *testing.T) {
	cases := map[string]testutils.SourceTestCase{
		"assign":        {Source: testutils.Main("x = 3\nreturn x"), Pass: testutils.PassEqual(hazel.Int(3))},
		"reassign":      {Source: testutils.Main("x = 3\nx = x + 1\nreturn x"), Pass: testutils.PassEqual(hazel.Int(4))},
		"undefined":     {Source: testutils.Main(`return nope`), Pass: testutils.PassFailure(hazel.NameFailure)},
		"incrementStmt": {Source: testutils.Main("x = 1\nx++\nreturn x"), Pass: testutils.PassEqual(hazel.Int(2))},
		"postfixOld":    {Source: testutils.Main("x = 1\ny = x++\nreturn [x, y]"), Pass: testutils.PassEqual(hazel.NewArray(hazel.Int(2), hazel.Int(1)))},
		"prefixNew":     {Source: testutils.Main("x = 1\ny = ++x\nreturn [x, y]"), Pass: testutils.PassEqual(hazel.NewArray(hazel.Int(2), hazel.Int(2)))},
		"incrementStr":  {Source: testutils.Main("x = \"a\"\nx++\nreturn x"), Pass: testutils.PassFailure(hazel.TypeFailure)},
		"localShadow": {
			Source: "counter: 10\nbump: () => {\n  counter = 99\n  return counter\n}\nmain: () => {\n  bump()\n  return counter\n}\n",
			Pass:   testutils.PassEqual(hazel.Int(10)),
		},
		"globalData": {
			Source: "greeting: hello\nmain: () => {\n  return greeting\n}\n",
			Pass:   testutils.PassEqual(hazel.Str("hello")),
		},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
}

// TestControlFlow tests if, while, for-in, break and continue.
func TestControlFlow(t *testing.T) {
	cases := map[string]testutils.SourceTestCase{
		"ifThen":   {Source: testutils.Main("if (1 < 2) {\n  return \"yes\"\n}\nreturn \"no\""), Pass: testutils.PassEqual(hazel.Str("yes"))},
		"ifElse":   {Source: testutils.Main("if (1 > 2) {\n  return \"yes\"\n} else {\n  return \"no\"\n}"), Pass: testutils.PassEqual(hazel.Str("no"))},
		"ifTruthy": {Source: testutils.Main("if (\"\") {\n  return 1\n}\nreturn 2"), Pass: testutils.PassEqual(hazel.Int(2))},
		"while": {
			Source: testutils.Main("total = 0\ni = 0\nwhile (i < 5) {\n  total = total + i\n  i++\n}\nreturn total"),
			Pass:   testutils.PassEqual(hazel.Int(10)),
		},
		"whileBreak": {
			Source: testutils.Main("i = 0\nwhile (true) {\n  i++\n  if (i == 3) {\n    break\n  }\n}\nreturn i"),
			Pass:   testutils.PassEqual(hazel.Int(3)),
		},
		"forArray": {
			Source: testutils.Main("total = 0\nfor (x in [1, 2, 3]) {\n  total = total + x\n}\nreturn total"),
			Pass:   testutils.PassEqual(hazel.Int(6)),
		},
		"forContinue": {
			Source: testutils.Main("total = 0\nfor (x in [1, 2, 3, 4]) {\n  if (x % 2 == 1) {\n    continue\n  }\n  total = total + x\n}\nreturn total"),
			Pass:   testutils.PassEqual(hazel.Int(6)),
		},
		"forString": {
			Source: testutils.Main("out = []\nfor (c in \"abc\") {\n  out.append(c)\n}\nreturn out"),
			Pass:   testutils.PassEqual(hazel.NewArray(hazel.Str("a"), hazel.Str("b"), hazel.Str("c"))),
		},
		"forDictKeys": {
			Source: testutils.Main("d = {\"a\": 1, \"b\": 2}\nout = []\nfor (k in d) {\n  out.append(k)\n}\nreturn out"),
			Pass:   testutils.PassEqual(hazel.NewArray(hazel.Str("a"), hazel.Str("b"))),
		},
		"forNotIterable": {Source: testutils.Main("for (x in 5) {\n  echo x\n}"), Pass: testutils.PassFailure(hazel.TypeFailure)},
		"breakOutsideLoop": {
			Source: testutils.Main("f = () => {\n  break\n}\nf()"),
			Pass:   testutils.PassFailure(hazel.RuntimeFailure),
		},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
}

// TestFunctions tests document functions, closures and recursion
// limits.
func TestFunctions(t *testing.T) {
	cases := map[string]testutils.SourceTestCase{
		"documentFunction": {
			Source: "double: (n) => {\n  return n * 2\n}\nmain: () => {\n  return double(21)\n}\n",
			Pass:   testutils.PassEqual(hazel.Int(42)),
		},
		"missingArgsAreNull": {
			Source: "f: (a, b) => {\n  return b\n}\nmain: () => {\n  return f(1)\n}\n",
			Pass:   testutils.PassEqual(hazel.Nil),
		},
		"closure": {
			Source: testutils.Main("add = (a, b) => {\n  return a + b\n}\nreturn add(2, 3)"),
			Pass:   testutils.PassEqual(hazel.Int(5)),
		},
		"closureCapture": {
			Source: testutils.Main("n = 10\naddN = (x) => {\n  return x + n\n}\nreturn addN(5)"),
			Pass:   testutils.PassEqual(hazel.Int(15)),
		},
		"closureRecursion": {
			Source: testutils.Main("fact = (n) => {\n  if (n <= 1) {\n    return 1\n  }\n  return n * fact(n - 1)\n}\nreturn fact(5)"),
			Pass:   testutils.PassEqual(hazel.Int(120)),
		},
		"documentRecursion": {
			Source: "fib: (n) => {\n  if (n < 2) {\n    return n\n  }\n  return fib(n - 1) + fib(n - 2)\n}\nmain: () => {\n  return fib(10)\n}\n",
			Pass:   testutils.PassEqual(hazel.Int(55)),
		},
		"recursionLimit": {
			Source: "loop: (n) => {\n  return loop(n + 1)\n}\nmain: () => {\n  return loop(0)\n}\n",
			Pass:   testutils.PassFailure(hazel.RecursionFailure),
		},
		"unknownFunction": {Source: testutils.Main(`return nothing_here(1)`), Pass: testutils.PassFailure(hazel.NameFailure)},
		"callTarget": {
			Source: "double: (n) => {\n  return n * 2\n}\ncall: double(21)\n",
			Pass:   testutils.PassEqual(hazel.Int(42)),
		},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
}

// TestClasses tests instantiation, methods, inheritance and declared
// objects.
func TestClasses(t *testing.T) {
	cases := map[string]testutils.SourceTestCase{
		"construct": {
			Source: "classes:\n  Point:\n    init: (x, y) => {\n      this.x = x\n      this.y = y\n    }\nmain: () => {\n  p = Point(3, 4)\n  return p.x + p.y\n}\n",
			Pass:   testutils.PassEqual(hazel.Int(7)),
		},
		"method": {
			Source: "classes:\n  Greeter:\n    init: (name) => {\n      this.name = name\n    }\n    greet: () => {\n      return \"hi \" + this.name\n    }\nmain: () => {\n  g = Greeter(\"Ada\")\n  return g.greet()\n}\n",
			Pass:   testutils.PassEqual(hazel.Str("hi Ada")),
		},
		"inheritance": {
			Source: "classes:\n  Animal:\n    describe: () => {\n      return this.name + \" says \" + this.speak()\n    }\n  Dog:\n    extends: Animal\n    init: (name) => {\n      this.name = name\n    }\n    speak: () => {\n      return \"Woof\"\n    }\nmain: () => {\n  d = Dog(\"Rex\")\n  return d.describe()\n}\n",
			Pass:   testutils.PassEqual(hazel.Str("Rex says Woof")),
		},
		"parentMethod": {
			Source: "classes:\n  Animal:\n    speak: () => {\n      return \"...\"\n    }\n  Dog:\n    extends: Animal\n    speak: () => {\n      return this.parent().speak() + \"!\"\n    }\nmain: () => {\n  d = Dog()\n  return d.speak()\n}\n",
			Pass:   testutils.PassEqual(hazel.Str("...!")),
		},
		"grandparentInit": {
			Source: "classes:\n  Base:\n    init: () => {\n      this.trail = \"A\"\n    }\n  Mid:\n    extends: Base\n    init: () => {\n      this.parent.init()\n      this.trail = this.trail + \"B\"\n    }\n  Leaf:\n    extends: Mid\n    init: () => {\n      this.parent.init()\n      this.trail = this.trail + \"C\"\n    }\nmain: () => {\n  v = Leaf()\n  return v.trail\n}\n",
			Pass:   testutils.PassEqual(hazel.Str("ABC")),
		},
		"grandparentMethod": {
			Source: "classes:\n  Base:\n    name: () => {\n      return \"base\"\n    }\n  Mid:\n    extends: Base\n    name: () => {\n      return this.parent.name() + \"-mid\"\n    }\n  Leaf:\n    extends: Mid\n    name: () => {\n      return this.parent.name() + \"-leaf\"\n    }\nmain: () => {\n  v = Leaf()\n  return v.name()\n}\n",
			Pass:   testutils.PassEqual(hazel.Str("base-mid-leaf")),
		},
		"declaredObject": {
			Source: "classes:\n  Counter:\n    init: (start) => {\n      this.count = start\n    }\n    bump: () => {\n      this.count = this.count + 1\n      return this.count\n    }\nobjects:\n  c: Counter(10)\nmain: () => {\n  c.bump()\n  return c.bump()\n}\n",
			Pass:   testutils.PassEqual(hazel.Int(12)),
		},
		"unknownClass": {Source: testutils.Main("x = 1\nreturn x.missing()"), Pass: testutils.PassFailure(hazel.TypeFailure)},
		"missingMethod": {
			Source: "classes:\n  Empty:\n    init: () => {\n      this.ok = true\n    }\nmain: () => {\n  e = Empty()\n  return e.missing()\n}\n",
			Pass:   testutils.PassAnyFailure(),
		},
		"thisOutsideMethod": {Source: testutils.Main(`return this.x`), Pass: testutils.PassFailure(hazel.NameFailure)},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
}

// TestFailureHandling tests throw, try, catch matching and finally.
func TestFailureHandling(t *testing.T) {
	cases := map[string]testutils.SourceTestCase{
		"throwEscapes": {Source: testutils.Main(`throw "boom"`), Pass: testutils.PassFailure(hazel.RuntimeFailure)},
		"catchAll": {
			Source: testutils.Main("try {\n  throw \"boom\"\n} catch (e) {\n  return e.message\n}"),
			Pass:   testutils.PassEqual(hazel.Str("boom")),
		},
		"catchKind": {
			Source: testutils.Main("try {\n  return 1 / 0\n} catch (Division e) {\n  return \"caught\"\n}"),
			Pass:   testutils.PassEqual(hazel.Str("caught")),
		},
		"catchRuntimeFamily": {
			Source: testutils.Main("try {\n  return missing\n} catch (RuntimeError e) {\n  return \"caught\"\n}"),
			Pass:   testutils.PassEqual(hazel.Str("caught")),
		},
		"catchWrongKind": {
			Source: testutils.Main("try {\n  return 1 / 0\n} catch (Type e) {\n  return \"caught\"\n}"),
			Pass:   testutils.PassFailure(hazel.DivisionFailure),
		},
		"catchSecondClause": {
			Source: testutils.Main("try {\n  return 1 / 0\n} catch (Type e) {\n  return \"type\"\n} catch (Division e) {\n  return \"division\"\n}"),
			Pass:   testutils.PassEqual(hazel.Str("division")),
		},
		"finallyRuns": {
			Source: testutils.Main("log = []\ntry {\n  log.append(\"try\")\n} finally {\n  log.append(\"finally\")\n}\nreturn log"),
			Pass:   testutils.PassEqual(hazel.NewArray(hazel.Str("try"), hazel.Str("finally"))),
		},
		"finallyOverridesReturn": {
			Source: testutils.Main("f = () => {\n  try {\n    return 1\n  } finally {\n    return 2\n  }\n}\nreturn f()"),
			Pass:   testutils.PassEqual(hazel.Int(2)),
		},
		"finallyAfterCatch": {
			Source: testutils.Main("out = \"\"\ntry {\n  throw \"x\"\n} catch (e) {\n  out = out + \"c\"\n} finally {\n  out = out + \"f\"\n}\nreturn out"),
			Pass:   testutils.PassEqual(hazel.Str("cf")),
		},
		"failureKindMember": {
			Source: testutils.Main("try {\n  return 1 / 0\n} catch (e) {\n  return e.kind\n}"),
			Pass:   testutils.PassEqual(hazel.Str("DivisionError")),
		},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
}

// TestCollections tests array, dict and string members and indexing.
func TestCollections(t *testing.T) {
	cases := map[string]testutils.SourceTestCase{
		"arrayIndex":     {Source: testutils.Main(`return [10, 20, 30][1]`), Pass: testutils.PassEqual(hazel.Int(20))},
		"arrayOOB":       {Source: testutils.Main(`return [1][5]`), Pass: testutils.PassFailure(hazel.IndexFailure)},
		"arrayAssign":    {Source: testutils.Main("a = [1, 2]\na[0] = 9\nreturn a"), Pass: testutils.PassEqual(hazel.NewArray(hazel.Int(9), hazel.Int(2)))},
		"arrayLength":    {Source: testutils.Main(`return [1, 2, 3].length()`), Pass: testutils.PassEqual(hazel.Int(3))},
		"arrayAppend":    {Source: testutils.Main("a = []\na.append(1)\na.push(2)\nreturn a"), Pass: testutils.PassEqual(hazel.NewArray(hazel.Int(1), hazel.Int(2)))},
		"arrayPop":       {Source: testutils.Main("a = [1, 2]\nv = a.pop()\nreturn [v, a.length()]"), Pass: testutils.PassEqual(hazel.NewArray(hazel.Int(2), hazel.Int(1)))},
		"arrayContains":  {Source: testutils.Main(`return [1, 2].contains(2)`), Pass: testutils.PassEqual(hazel.Bool(true))},
		"arrayJoin":      {Source: testutils.Main(`return ["a", "b"].join("-")`), Pass: testutils.PassEqual(hazel.Str("a-b"))},
		"arraySortNums":  {Source: testutils.Main("a = [3, 1, 2]\na.sort()\nreturn a"), Pass: testutils.PassEqual(hazel.NewArray(hazel.Int(1), hazel.Int(2), hazel.Int(3)))},
		"arrayReverse":   {Source: testutils.Main("a = [1, 2]\na.reverse()\nreturn a"), Pass: testutils.PassEqual(hazel.NewArray(hazel.Int(2), hazel.Int(1)))},
		"dictLiteral":    {Source: testutils.Main(`return {"a": 1}["a"]`), Pass: testutils.PassEqual(hazel.Int(1))},
		"dictMissingKey": {Source: testutils.Main(`return {"a": 1}["b"]`), Pass: testutils.PassFailure(hazel.KeyFailure)},
		"dictAssign":     {Source: testutils.Main("d = {\"a\": 1}\nd[\"b\"] = 2\nreturn d.length()"), Pass: testutils.PassEqual(hazel.Int(2))},
		"dictKeyRead":    {Source: testutils.Main("d = {\"name\": \"Ada\"}\nreturn d.name"), Pass: testutils.PassEqual(hazel.Str("Ada"))},
		"dictKeys":       {Source: testutils.Main(`return {"a": 1, "b": 2}.keys()`), Pass: testutils.PassEqual(hazel.NewArray(hazel.Str("a"), hazel.Str("b")))},
		"dictHas":        {Source: testutils.Main(`return {"a": 1}.has("a")`), Pass: testutils.PassEqual(hazel.Bool(true))},
		"dictGetDefault": {Source: testutils.Main(`return {"a": 1}.get("b", 7)`), Pass: testutils.PassEqual(hazel.Int(7))},
		"dictIntKey":     {Source: testutils.Main("d = {}\nd[1] = \"one\"\nreturn d[\"1\"]"), Pass: testutils.PassEqual(hazel.Str("one"))},
		"stringIndex":    {Source: testutils.Main(`return "abc"[1]`), Pass: testutils.PassEqual(hazel.Str("b"))},
		"stringLength":   {Source: testutils.Main(`return "abc".length()`), Pass: testutils.PassEqual(hazel.Int(3))},
		"stringUpper":    {Source: testutils.Main(`return "abc".upper()`), Pass: testutils.PassEqual(hazel.Str("ABC"))},
		"stringSplit":    {Source: testutils.Main(`return "a,b".split(",")`), Pass: testutils.PassEqual(hazel.NewArray(hazel.Str("a"), hazel.Str("b")))},
		"stringReplace":  {Source: testutils.Main(`return "aaa".replace("a", "b")`), Pass: testutils.PassEqual(hazel.Str("bbb"))},
		"stringTrim":     {Source: testutils.Main(`return "  x ".trim()`), Pass: testutils.PassEqual(hazel.Str("x"))},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
}

// TestBuiltins tests the global builtin functions.
func TestBuiltins(t *testing.T) {
	cases := map[string]testutils.SourceTestCase{
		"echo":        {Source: testutils.Main(`echo "hi"`), Pass: testutils.PassOutput("hi\n")},
		"echoValue":   {Source: testutils.Main(`echo [1, "a"]`), Pass: testutils.PassOutput("[1, \"a\"]\n")},
		"echoCall":    {Source: testutils.Main(`x = echo("a", 1)`), Pass: testutils.PassOutput("a 1\n")},
		"lenString":   {Source: testutils.Main(`return len("héllo")`), Pass: testutils.PassEqual(hazel.Int(5))},
		"lenArray":    {Source: testutils.Main(`return len([1, 2])`), Pass: testutils.PassEqual(hazel.Int(2))},
		"intFromStr":  {Source: testutils.Main(`return int("42")`), Pass: testutils.PassEqual(hazel.Int(42))},
		"intFromFlt":  {Source: testutils.Main(`return int(3.9)`), Pass: testutils.PassEqual(hazel.Int(3))},
		"intInvalid":  {Source: testutils.Main(`return int("nope")`), Pass: testutils.PassFailure(hazel.TypeFailure)},
		"floatFromStr": {
			Source: testutils.Main(`return float("2.5")`),
			Pass:   testutils.PassEqual(hazel.Float(2.5)),
		},
		"str":      {Source: testutils.Main(`return str(42)`), Pass: testutils.PassEqual(hazel.Str("42"))},
		"typeInt":  {Source: testutils.Main(`return type(1)`), Pass: testutils.PassEqual(hazel.Str("int"))},
		"typeStr":  {Source: testutils.Main(`return type("x")`), Pass: testutils.PassEqual(hazel.Str("string"))},
		"abs":      {Source: testutils.Main(`return abs(-4)`), Pass: testutils.PassEqual(hazel.Int(4))},
		"max":      {Source: testutils.Main(`return max(1, 9, 3)`), Pass: testutils.PassEqual(hazel.Int(9))},
		"maxArray": {Source: testutils.Main(`return max([1, 9, 3])`), Pass: testutils.PassEqual(hazel.Int(9))},
		"min":      {Source: testutils.Main(`return min(4, 2)`), Pass: testutils.PassEqual(hazel.Int(2))},
		"range":    {Source: testutils.Main(`return range(3)`), Pass: testutils.PassEqual(hazel.NewArray(hazel.Int(0), hazel.Int(1), hazel.Int(2)))},
		"rangeStartStop": {
			Source: testutils.Main(`return range(2, 5)`),
			Pass:   testutils.PassEqual(hazel.NewArray(hazel.Int(2), hazel.Int(3), hazel.Int(4))),
		},
		"rangeStep": {
			Source: testutils.Main(`return range(5, 0, -2)`),
			Pass:   testutils.PassEqual(hazel.NewArray(hazel.Int(5), hazel.Int(3), hazel.Int(1))),
		},
		"rangeZeroStep": {Source: testutils.Main(`return range(0, 5, 0)`), Pass: testutils.PassFailure(hazel.ValueFailure)},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
}

// TestModuleImports tests importing the builtin modules from scripts.
func TestModuleImports(t *testing.T) {
	cases := map[string]testutils.SourceTestCase{
		"mathSqrt": {
			Source: testutils.Main("import math\nreturn math.sqrt(16)"),
			Pass:   testutils.PassEqual(hazel.Float(4)),
		},
		"mathConst": {
			Source: testutils.Main("import math\nreturn math.PI > 3.14 && math.PI < 3.15"),
			Pass:   testutils.PassEqual(hazel.Bool(true)),
		},
		"alias": {
			Source: testutils.Main("import math as m\nreturn m.floor(2.7)"),
			Pass:   testutils.PassEqual(hazel.Int(2)),
		},
		"topLevelImports": {
			Source: "imports:\n  - math\nmain: () => {\n  return math.sqrt(4)\n}\n",
			Pass:   testutils.PassEqual(hazel.Float(2)),
		},
		"stringModule": {
			Source: testutils.Main("import string\nreturn string.to_upper(\"ok\")"),
			Pass:   testutils.PassEqual(hazel.Str("OK")),
		},
		"jsonRoundTrip": {
			Source: testutils.Main("import json\nreturn json.parse(\"[1, 2]\")"),
			Pass:   testutils.PassEqual(hazel.NewArray(hazel.Int(1), hazel.Int(2))),
		},
		"unknownModule":   {Source: testutils.Main(`import nonexistent`), Pass: testutils.PassFailure(hazel.ImportFailure)},
		"unknownFunction": {Source: testutils.Main("import math\nreturn math.frobnicate(1)"), Pass: testutils.PassFailure(hazel.NameFailure)},
		"badArity":        {Source: testutils.Main("import math\nreturn math.sqrt(1, 2)"), Pass: testutils.PassFailure(hazel.ValueFailure)},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
}
