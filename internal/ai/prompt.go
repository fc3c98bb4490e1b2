package ai

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// TemplateID names a prompt in the catalog
type TemplateID string

const (
	TemplateRecommendations    TemplateID = "recommendations"
	TemplateVisualSearch       TemplateID = "visual_search"
	TemplateStyleAdvice        TemplateID = "style_advice"
	TemplateAdminReport        TemplateID = "admin_report"
	TemplateProductDescription TemplateID = "product_description"
	TemplatePriceSuggestion    TemplateID = "price_suggestion"
	TemplateSupplierSuggestion TemplateID = "supplier_suggestion"
	TemplateGraphicDesign      TemplateID = "graphic_design"
	TemplateVirtualTryOn       TemplateID = "virtual_try_on"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// mediaMark delimits the placeholder the media func leaves in rendered text. Each render
// adds its own nonce so interpolated text cannot forge or break a placeholder.
const mediaMark = "\x00"

type promptCatalog struct {
	Templates map[TemplateID]string `yaml:"templates"`
}

// Renderer turns a template id plus structured data into the prompt sent to the model.
// Rendering is pure: the same inputs always produce the same prompt.
type Renderer struct {
	templates map[TemplateID]*template.Template
}

// NewRenderer loads the embedded prompt catalog
func NewRenderer() (*Renderer, error) {
	return ParseRenderer(defaultPrompts)
}

// ParseRenderer builds a renderer from a YAML prompt catalog
func ParseRenderer(src []byte) (*Renderer, error) {
	var catalog promptCatalog
	if err := yaml.Unmarshal(src, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse prompt catalog: %w", err)
	}
	if len(catalog.Templates) == 0 {
		return nil, fmt.Errorf("prompt catalog has no templates")
	}

	r := &Renderer{templates: make(map[TemplateID]*template.Template, len(catalog.Templates))}
	for id, text := range catalog.Templates {
		tmpl, err := template.New(string(id)).
			Option("missingkey=error").
			Funcs(baseFuncs(nil, "")).
			Parse(text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse prompt %q: %w", id, err)
		}
		r.templates[id] = tmpl
	}
	return r, nil
}

// Render executes template id against data. When schema is not nil the prompt ends with
// the instruction to answer with only a JSON object matching it. Data URIs passed to the
// media func become inline media parts, in template order.
func (r *Renderer) Render(id TemplateID, data any, schema *Schema) (Prompt, error) {
	base, ok := r.templates[id]
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt template %q", id)
	}

	var media []*Media
	nonce := uuid.NewString()
	tmpl, err := base.Clone()
	if err != nil {
		return Prompt{}, fmt.Errorf("failed to clone prompt %q: %w", id, err)
	}
	tmpl.Funcs(baseFuncs(&media, nonce))

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return Prompt{}, fmt.Errorf("failed to render prompt %q: %w", id, err)
	}

	if schema != nil {
		sb.WriteString("\n\nRespond with only a JSON object matching the schema \"")
		sb.WriteString(schema.Name)
		sb.WriteString("\" below. Do not add any other text.\n")
		sb.WriteString(schema.JSON())
	}

	return splitMedia(sb.String(), media, nonce)
}

func baseFuncs(media *[]*Media, nonce string) template.FuncMap {
	return template.FuncMap{
		"json": func(v any) (string, error) {
			b, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			return string(b), nil
		},
		"join": strings.Join,
		"media": func(uri string) (string, error) {
			m, err := ParseDataURI(uri)
			if err != nil {
				return "", err
			}
			if media == nil {
				return "", nil
			}
			*media = append(*media, m)
			return mediaMark + nonce + ":" + strconv.Itoa(len(*media)-1) + mediaMark, nil
		},
	}
}

// splitMedia cuts the rendered text at every media placeholder of this render.
// Stray NUL bytes coming from interpolated data are dropped.
func splitMedia(text string, media []*Media, nonce string) (Prompt, error) {
	var parts []Part
	addText := func(chunk string) {
		if chunk = strings.ReplaceAll(chunk, mediaMark, ""); chunk != "" {
			parts = append(parts, Part{Text: chunk})
		}
	}

	open := mediaMark + nonce + ":"
	for {
		start := strings.Index(text, open)
		if start < 0 {
			break
		}
		end := strings.Index(text[start+len(open):], mediaMark)
		if end < 0 {
			return Prompt{}, fmt.Errorf("unterminated media placeholder")
		}
		idx, err := strconv.Atoi(text[start+len(open) : start+len(open)+end])
		if err != nil || idx < 0 || idx >= len(media) {
			return Prompt{}, fmt.Errorf("corrupt media placeholder")
		}
		addText(text[:start])
		parts = append(parts, Part{Media: media[idx]})
		text = text[start+len(open)+end+len(mediaMark):]
	}
	addText(text)

	if len(parts) == 0 {
		parts = []Part{{Text: ""}}
	}
	return Prompt{Parts: parts}, nil
}
