package domain

// Format is a hint for how the transport should render a message
type Format string

const (
	FormatPlain    Format = ""
	FormatMarkdown Format = "Markdown"
	FormatHTML     Format = "HTML"
)

// AnswerVerdict is the grading result of one quiz line
type AnswerVerdict struct {
	Position int // 1-based
	Answer   string
	Expected string
	Correct  bool
}

// GradeReport holds per-line verdicts in quiz order
type GradeReport struct {
	Verdicts []AnswerVerdict
}

// CorrectCount returns how many lines were answered correctly
func (r GradeReport) CorrectCount() int {
	n := 0
	for _, v := range r.Verdicts {
		if v.Correct {
			n++
		}
	}
	return n
}
