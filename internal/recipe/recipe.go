// Package recipe holds the structured-output contract of the recipe profile:
// the response schema, the prompt, and the text rendering of a recipe list.
package recipe

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"recipe-chat/internal/llm"
)

//go:embed prompts/recipe_user.md
var promptFS embed.FS

const (
	promptPath = "prompts/recipe_user.md"

	ingredientsLabel  = "Ingredients: "
	instructionsLabel = "Instructions: "
	ingredientsSep    = ", "
	// Separator is the line placed between rendered recipes.
	Separator = "---"
	blockSep  = "\n\n" + Separator + "\n\n"

	parseErrorPrefix = "Could not parse recipe data: "
	emptyListText    = "No recipes found."
)

type Recipe struct {
	Name         string   `json:"recipeName"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
}

// Schema is the response schema sent to the provider: an array of recipes,
// each with all three fields required.
func Schema() *llm.Schema {
	return &llm.Schema{
		Type:        llm.TypeArray,
		Description: "List of recipes based on leftover food items",
		Items: &llm.Schema{
			Type: llm.TypeObject,
			Properties: map[string]*llm.Schema{
				"recipeName": {Type: llm.TypeString},
				"ingredients": {
					Type:  llm.TypeArray,
					Items: &llm.Schema{Type: llm.TypeString},
				},
				"instructions": {Type: llm.TypeString},
			},
			Required: []string{"recipeName", "ingredients", "instructions"},
		},
	}
}

var promptTemplate = mustReadPrompt(promptPath)

func mustReadPrompt(path string) string {
	data, err := promptFS.ReadFile(path)
	if err != nil {
		panic("recipe: read prompt template " + path + ": " + err.Error())
	}
	return strings.TrimSpace(string(data))
}

// Prompt renders the user prompt for the given ingredient list.
func Prompt(input string) string {
	return strings.NewReplacer("{{input}}", input).Replace(promptTemplate)
}

// Decode parses a provider payload, rejecting anything that does not match
// Schema.
func Decode(payload string) ([]Recipe, error) {
	if err := Schema().Validate([]byte(payload)); err != nil {
		return nil, err
	}
	var recipes []Recipe
	if err := json.Unmarshal([]byte(payload), &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// Format renders a provider payload as display text. It never fails: a
// malformed payload yields a diagnostic line carrying the parse error.
func Format(payload string) string {
	recipes, err := Decode(payload)
	if err != nil {
		return parseErrorPrefix + err.Error()
	}
	if len(recipes) == 0 {
		return emptyListText
	}
	return Render(recipes)
}

// Render lays out each recipe as an emphasized name line, an ingredient line
// and an instruction line, with a separator line between recipes. Field text
// is escaped so that Parse can always split it back apart: backslashes and
// line breaks in names and ingredients, commas in ingredients, and
// separator lines inside instructions.
func Render(recipes []Recipe) string {
	blocks := make([]string, 0, len(recipes))
	for _, r := range recipes {
		ingredients := make([]string, len(r.Ingredients))
		for i, ing := range r.Ingredients {
			ingredients[i] = escapeField(ing, true)
		}
		blocks = append(blocks, strings.Join([]string{
			"**" + escapeField(r.Name, false) + "**",
			ingredientsLabel + strings.Join(ingredients, ingredientsSep),
			instructionsLabel + escapeInstructions(r.Instructions),
		}, "\n"))
	}
	return strings.Join(blocks, blockSep)
}

// Parse recovers recipes from text produced by Render.
func Parse(rendered string) ([]Recipe, error) {
	if strings.TrimSpace(rendered) == "" {
		return nil, errors.New("empty recipe text")
	}
	blocks := strings.Split(rendered, blockSep)
	recipes := make([]Recipe, 0, len(blocks))
	for i, block := range blocks {
		r, err := parseBlock(block)
		if err != nil {
			return nil, fmt.Errorf("recipe %d: %w", i+1, err)
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}

func parseBlock(block string) (Recipe, error) {
	name, rest, ok := strings.Cut(block, "\n")
	if !ok {
		return Recipe{}, errors.New("truncated block")
	}
	if !strings.HasPrefix(name, "**") || !strings.HasSuffix(name, "**") || len(name) < 4 {
		return Recipe{}, fmt.Errorf("missing emphasized name in %q", name)
	}
	ingredients, instructions, ok := strings.Cut(rest, "\n")
	if !ok {
		return Recipe{}, errors.New("missing instructions line")
	}
	if !strings.HasPrefix(ingredients, ingredientsLabel) {
		return Recipe{}, fmt.Errorf("missing %q line", strings.TrimSpace(ingredientsLabel))
	}
	if !strings.HasPrefix(instructions, instructionsLabel) {
		return Recipe{}, fmt.Errorf("missing %q line", strings.TrimSpace(instructionsLabel))
	}
	return Recipe{
		Name:         unescape(strings.TrimSuffix(strings.TrimPrefix(name, "**"), "**")),
		Ingredients:  splitIngredients(strings.TrimPrefix(ingredients, ingredientsLabel)),
		Instructions: unescape(strings.TrimPrefix(instructions, instructionsLabel)),
	}, nil
}

func escapeField(value string, comma bool) string {
	var b strings.Builder
	for _, r := range value {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == ',' && comma:
			b.WriteString(`\,`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// escapeInstructions keeps line breaks readable and only guards lines that
// would read as a recipe separator.
func escapeInstructions(value string) string {
	lines := strings.Split(strings.ReplaceAll(value, `\`, `\\`), "\n")
	for i, line := range lines {
		if line == Separator {
			lines[i] = `\` + line
		}
	}
	return strings.Join(lines, "\n")
}

// unescape reverses escapeField and escapeInstructions.
func unescape(value string) string {
	if !strings.Contains(value, `\`) {
		return value
	}
	var b strings.Builder
	escaped := false
	for _, r := range value {
		if !escaped {
			if r == '\\' {
				escaped = true
				continue
			}
			b.WriteRune(r)
			continue
		}
		escaped = false
		switch r {
		case 'n':
			b.WriteRune('\n')
		case 'r':
			b.WriteRune('\r')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// splitIngredients splits on unescaped commas; escaped commas are part of an
// ingredient.
func splitIngredients(list string) []string {
	ingredients := []string{}
	if list == "" {
		return ingredients
	}
	var current strings.Builder
	escaped := false
	for _, r := range list {
		switch {
		case escaped:
			current.WriteRune('\\')
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ',':
			ingredients = append(ingredients, unescape(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	ingredients = append(ingredients, unescape(current.String()))
	for i := 1; i < len(ingredients); i++ {
		ingredients[i] = strings.TrimPrefix(ingredients[i], " ")
	}
	return ingredients
}
