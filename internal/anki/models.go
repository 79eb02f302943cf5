package anki

// Fixed note-type IDs written on export. Stable IDs let a re-exported
// collection merge into a previous import instead of duplicating models.
const (
	BasicModelID = int64(1698000000001)
	ClozeModelID = int64(1698000000002)
)

const defaultCSS = `.card {
    font-family: arial;
    font-size: 20px;
    text-align: center;
    color: black;
    background-color: white;
}`

const (
	defaultLatexPre = `\documentclass[12pt]{article}
\special{papersize=3in,5in}
\usepackage[utf8]{inputenc}
\usepackage{amssymb,amsmath}
\pagestyle{empty}
\setlength{\parindent}{0in}
\begin{document}
`
	defaultLatexPost = `\end{document}`
)

func newField(name string, ord int) ModelField {
	return ModelField{
		Name:  name,
		Ord:   ord,
		Font:  "Arial",
		Size:  20,
		Media: []any{},
	}
}

// NewBasicModel returns the standard two-field question/answer model.
func NewBasicModel(id int64, modified int64) Model {
	return Model{
		ID:        id,
		Name:      "Basic",
		Kind:      ModelKindStandard,
		Modified:  modified,
		SortField: 0,
		Templates: []ModelTemplate{
			{
				Name:           "Card 1",
				Ord:            0,
				QuestionFormat: "{{Front}}",
				AnswerFormat:   "{{FrontSide}}\n\n<hr id=answer>\n\n{{Back}}",
			},
		},
		Fields:    []ModelField{newField("Front", 0), newField("Back", 1)},
		CSS:       defaultCSS,
		LatexPre:  defaultLatexPre,
		LatexPost: defaultLatexPost,
		Req:       []any{[]any{0, "any", []any{0}}},
		Tags:      []string{},
	}
}

// NewClozeModel returns the standard cloze model.
func NewClozeModel(id int64, modified int64) Model {
	return Model{
		ID:        id,
		Name:      "Cloze",
		Kind:      ModelKindCloze,
		Modified:  modified,
		SortField: 0,
		Templates: []ModelTemplate{
			{
				Name:           "Cloze",
				Ord:            0,
				QuestionFormat: "{{cloze:Text}}",
				AnswerFormat:   "{{cloze:Text}}<br>\n{{Extra}}",
			},
		},
		Fields:    []ModelField{newField("Text", 0), newField("Extra", 1)},
		CSS:       defaultCSS + "\n.cloze {\n    font-weight: bold;\n    color: blue;\n}",
		LatexPre:  defaultLatexPre,
		LatexPost: defaultLatexPost,
		Req:       []any{[]any{0, "any", []any{0}}},
		Tags:      []string{},
	}
}

// NewFallbackModel returns the two-field model substituted for notes whose
// note-type is missing from an imported collection.
func NewFallbackModel(id int64, modified int64) Model {
	m := NewBasicModel(id, modified)
	m.Name = "Recovered Basic"
	return m
}
