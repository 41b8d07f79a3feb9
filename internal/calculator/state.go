package calculator

import (
	"strings"
	"unicode/utf8"

	postfixnotation "fincalc/pkg/postfix_notation"
)

// Keys that are not digits, operators, functions or constants.
const (
	KeyClear          = "C"
	KeyBackspace      = "backspace"
	KeyEquals         = "="
	KeyPercent        = "%"
	KeyOpenParen      = "("
	KeyCloseParen     = ")"
	KeyFactorial      = "!"
	KeyMemoryClear    = "MC"
	KeyMemoryRecall   = "MR"
	KeyMemoryAdd      = "M+"
	KeyMemorySubtract = "M-"
	KeyAngle          = "angle"
)

// keyAliases maps keyboard spellings to the keypad glyphs kept in the
// expression.
var keyAliases = map[string]string{
	"*":      "×",
	"x":      "×",
	"/":      "÷",
	"−":      "-",
	"pi":     "π",
	"√":      "sqrt",
	"Enter":  KeyEquals,
	"c":      KeyClear,
	"AC":     KeyClear,
	"Escape": KeyClear,
	"⌫":      KeyBackspace,
}

// Mode is the interaction phase of the keypad.
type Mode int

const (
	Typing Mode = iota
	ResultShown
)

func (m Mode) String() string {
	if m == ResultShown {
		return "result"
	}
	return "typing"
}

// Entry is handed to a Recorder after every successful "=".
type Entry struct {
	Expression string
	Result     string
}

// Summary is the one-line form kept in the history list.
func (e Entry) Summary() string {
	return e.Expression + " = " + e.Result
}

// Recorder receives committed calculations.
type Recorder interface {
	Record(Entry)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(Entry)

func (f RecorderFunc) Record(e Entry) { f(e) }

// Option configures a State.
type Option func(*State)

// WithScientific enables functions, constants, power, parentheses, memory
// and the angle toggle.
func WithScientific() Option {
	return func(s *State) { s.grammar = postfixnotation.Scientific }
}

func WithAngle(a postfixnotation.AngleMode) Option {
	return func(s *State) { s.angle = a }
}

func WithRecorder(r Recorder) Option {
	return func(s *State) { s.recorder = r }
}

// State is the keypad calculator: the expression being typed plus the
// outcome of the last "=". It is not safe for concurrent use.
type State struct {
	expression string
	mode       Mode

	result string // committed value as fed back on chaining, empty after a failure
	value  float64
	err    error

	memory   float64
	angle    postfixnotation.AngleMode
	grammar  postfixnotation.Grammar
	recorder Recorder
}

func New(opts ...Option) *State {
	s := &State{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *State) Expression() string { return s.expression }
func (s *State) Mode() Mode         { return s.mode }
func (s *State) Memory() float64    { return s.memory }

func (s *State) Angle() postfixnotation.AngleMode { return s.angle }

func (s *State) Scientific() bool { return s.grammar == postfixnotation.Scientific }

func (s *State) options() postfixnotation.Options {
	return postfixnotation.Options{Grammar: s.grammar, Angle: s.angle}
}

// Result returns the outcome of the last "=". It is only meaningful in
// ResultShown mode.
func (s *State) Result() (float64, error) {
	return s.value, s.err
}

// Preview evaluates the expression without committing it.
func (s *State) Preview() (float64, error) {
	return Evaluate(s.expression, s.options())
}

// View renders both display regions.
func (s *State) View(f *Formatter) Display {
	d := Display{Expression: f.Expression(s.expression)}
	if s.mode == ResultShown {
		if s.err != nil {
			d.Result = ErrorText
			d.Message = Message(s.err)
		} else {
			d.Result = f.Number(s.value)
		}
		return d
	}
	if strings.TrimSpace(s.expression) == "" {
		return d
	}
	if v, err := s.Preview(); err == nil {
		d.Result = f.Number(v)
	}
	return d
}

// Press applies one key and reports whether it changed anything.
func (s *State) Press(key string) bool {
	if alias, ok := keyAliases[key]; ok {
		key = alias
	}
	switch {
	case key == KeyClear:
		s.Clear()
		return true
	case key == KeyBackspace:
		s.backspace()
		return true
	case key == KeyEquals:
		return s.equals()
	case key == KeyPercent:
		return s.percent()
	case isNumberKey(key):
		return s.digit(key)
	case isBinaryOperator(key, s.grammar):
		return s.operator(key)
	}
	if s.grammar != postfixnotation.Scientific {
		return false
	}
	switch {
	case key == KeyOpenParen:
		return s.insert(KeyOpenParen)
	case key == KeyCloseParen:
		return s.closeParen()
	case key == KeyFactorial:
		return s.factorial()
	case postfixnotation.IsFunction(key):
		return s.insert(key + "(")
	case postfixnotation.IsConstant(key):
		return s.insert(key)
	case key == KeyMemoryClear:
		s.memory = 0
		return true
	case key == KeyMemoryRecall:
		return s.memoryRecall()
	case key == KeyMemoryAdd:
		return s.memoryAdd(1)
	case key == KeyMemorySubtract:
		return s.memoryAdd(-1)
	case key == KeyAngle:
		if s.angle == postfixnotation.Degrees {
			s.angle = postfixnotation.Radians
		} else {
			s.angle = postfixnotation.Degrees
		}
		return true
	}
	return false
}

// Clear empties the expression. Memory survives.
func (s *State) Clear() {
	s.expression = ""
	s.mode = Typing
	s.result = ""
	s.value = 0
	s.err = nil
}

// start begins a new expression after a result was shown.
func (s *State) start(text string) {
	s.Clear()
	s.expression = text
}

func (s *State) digit(key string) bool {
	if s.mode == ResultShown {
		s.start(key)
		return true
	}
	if key == "." && strings.Contains(trailingNumber(s.expression), ".") {
		return false
	}
	if closesOperand(s.expression) {
		return false
	}
	s.expression += key
	return true
}

func (s *State) operator(op string) bool {
	if s.mode == ResultShown {
		if s.err == nil && s.result != "" {
			s.start(s.result + " " + op + " ")
			return true
		}
		s.Clear()
	}

	expr := strings.TrimRight(s.expression, " ")
	if expr == "" {
		if op == "-" {
			s.expression = "-"
			return true
		}
		return false
	}
	if expr == "-" {
		return false
	}

	last, size := utf8.DecodeLastRuneInString(expr)
	switch {
	case last == '(':
		if op != "-" {
			return false
		}
		s.expression = expr + "-"
		return true
	case last == '-' && isUnaryMinus(expr):
		if op == "-" {
			return false
		}
		rest := strings.TrimRight(expr[:len(expr)-size], " ")
		prev, prevSize := utf8.DecodeLastRuneInString(rest)
		if prev == '(' {
			return false
		}
		s.expression = strings.TrimRight(rest[:len(rest)-prevSize], " ") + " " + op + " "
		return true
	case isOperatorRune(last):
		if op == "-" && isMultiplicativeRune(last) {
			s.expression = expr + " -"
			return true
		}
		s.expression = strings.TrimRight(expr[:len(expr)-size], " ") + " " + op + " "
		return true
	}
	s.expression = expr + " " + op + " "
	return true
}

func (s *State) backspace() {
	if s.mode == ResultShown {
		s.Clear()
		return
	}
	expr := strings.TrimRight(s.expression, " ")
	if expr == "" {
		s.expression = ""
		return
	}
	last, size := utf8.DecodeLastRuneInString(expr)
	expr = expr[:len(expr)-size]
	if last == '(' {
		if name := trailingFunction(expr); name != "" {
			expr = expr[:len(expr)-len(name)]
		}
	}
	trimmed := strings.TrimRight(expr, " ")
	if r, _ := utf8.DecodeLastRuneInString(trimmed); isOperatorRune(r) && !(r == '-' && isUnaryMinus(trimmed)) {
		s.expression = trimmed + " "
		return
	}
	s.expression = trimmed
}

func (s *State) equals() bool {
	if s.mode == ResultShown || strings.TrimSpace(s.expression) == "" {
		return false
	}
	v, err := Evaluate(s.expression, s.options())
	s.mode = ResultShown
	if err != nil {
		s.err = err
		s.result = ""
		s.value = 0
		return true
	}
	s.err = nil
	s.value = v
	s.result = FormatResult(v)
	if s.recorder != nil {
		s.recorder.Record(Entry{Expression: strings.TrimSpace(s.expression), Result: s.result})
	}
	return true
}

func (s *State) percent() bool {
	expr := s.expression
	if s.mode == ResultShown {
		if s.err != nil || s.result == "" {
			return false
		}
		expr = s.result
	}
	resolved, ok := ResolvePercent(expr + KeyPercent)
	if !ok {
		return false
	}
	s.start(resolved)
	return true
}

// insert appends an opening parenthesis, function opener or constant.
// Nothing is inserted right after an operand.
func (s *State) insert(text string) bool {
	if s.mode == ResultShown {
		s.start(text)
		return true
	}
	expr := strings.TrimRight(s.expression, " ")
	if trailingNumber(expr) != "" || closesOperand(expr) {
		return false
	}
	s.expression += text
	return true
}

func (s *State) closeParen() bool {
	if s.mode == ResultShown {
		return false
	}
	expr := strings.TrimRight(s.expression, " ")
	if strings.Count(expr, "(") <= strings.Count(expr, ")") {
		return false
	}
	if last, _ := utf8.DecodeLastRuneInString(expr); last == '(' || isOperatorRune(last) {
		return false
	}
	s.expression = expr + ")"
	return true
}

func (s *State) factorial() bool {
	if s.mode == ResultShown {
		if s.err != nil || s.result == "" {
			return false
		}
		s.start(s.result + KeyFactorial)
		return true
	}
	expr := strings.TrimRight(s.expression, " ")
	last, _ := utf8.DecodeLastRuneInString(expr)
	if expr == "" || last == '(' || last == '.' || isOperatorRune(last) {
		return false
	}
	s.expression = expr + KeyFactorial
	return true
}

// current is the value M+ and M- work with.
func (s *State) current() (float64, bool) {
	if s.mode == ResultShown {
		return s.value, s.err == nil
	}
	v, err := s.Preview()
	return v, err == nil
}

func (s *State) memoryAdd(sign float64) bool {
	v, ok := s.current()
	if !ok {
		return false
	}
	s.memory += sign * v
	return true
}

func (s *State) memoryRecall() bool {
	text := FormatResult(s.memory)
	if s.mode == ResultShown {
		s.start(text)
		return true
	}
	expr := strings.TrimRight(s.expression, " ")
	if trailingNumber(expr) != "" || closesOperand(expr) {
		return false
	}
	if s.memory < 0 && expr != "" {
		text = "(" + text + ")"
	}
	s.expression += text
	return true
}

func isNumberKey(key string) bool {
	return len(key) == 1 && (key[0] == '.' || (key[0] >= '0' && key[0] <= '9'))
}

func isBinaryOperator(key string, grammar postfixnotation.Grammar) bool {
	switch key {
	case "+", "-", "×", "÷":
		return true
	case "^":
		return grammar == postfixnotation.Scientific
	}
	return false
}

func isOperatorRune(r rune) bool {
	return r == '+' || r == '-' || r == '×' || r == '÷' || r == '^'
}

func isMultiplicativeRune(r rune) bool {
	return r == '×' || r == '÷' || r == '^'
}

// isUnaryMinus reports whether the "-" ending expr is a sign rather than a
// binary operator.
func isUnaryMinus(expr string) bool {
	rest := strings.TrimRight(strings.TrimSuffix(expr, "-"), " ")
	if rest == "" {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(rest)
	return prev == '(' || isMultiplicativeRune(prev)
}

// trailingNumber returns the digit/point run at the end of expr.
func trailingNumber(expr string) string {
	i := len(expr)
	for i > 0 && isNumberKey(expr[i-1:i]) {
		i--
	}
	return expr[i:]
}

// closesOperand reports whether expr ends in ")", "!" or a constant.
func closesOperand(expr string) bool {
	last, _ := utf8.DecodeLastRuneInString(expr)
	return last == ')' || last == '!' || last == 'π' || last == 'e'
}

func trailingFunction(expr string) string {
	for _, name := range []string{"factorial", "asin", "acos", "atan", "sqrt", "sin", "cos", "tan", "log", "ln"} {
		if strings.HasSuffix(expr, name) {
			return name
		}
	}
	return ""
}
