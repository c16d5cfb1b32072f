package chat

import (
	"fmt"
	"sort"

	"recipe-chat/internal/generation"
	"recipe-chat/internal/llm"
	"recipe-chat/internal/recipe"
)

const (
	ProfileRecipe = "recipe"
	ProfileText   = "text"
	ProfileStory  = "story"

	DefaultLoadingText = "AI is typing..."
)

// Profile parameterizes a session: how a draft becomes a request, and how a
// result becomes the text of the AI message.
type Profile struct {
	Name        string
	Title       string
	Placeholder string
	SubmitLabel string
	LoadingText string
	Fallback    string
	Schema      *llm.Schema
	Models      map[string]string
	Prompt      func(input string) string
	Format      func(result generation.Result) string
}

func (p Profile) request(input string) generation.Request {
	prompt := input
	if p.Prompt != nil {
		prompt = p.Prompt(input)
	}
	return generation.Request{Prompt: prompt, Schema: p.Schema}
}

func (p Profile) render(result generation.Result) string {
	if result.Failed() {
		return p.Fallback
	}
	if p.Format == nil {
		return result.Value
	}
	return p.Format(result)
}

// ModelFor returns the profile's preferred model for provider, or "" to use
// the provider default.
func (p Profile) ModelFor(provider string) string {
	if provider == "" {
		provider = llm.ProviderGemini
	}
	return p.Models[provider]
}

func (p Profile) loadingText() string {
	if p.LoadingText == "" {
		return DefaultLoadingText
	}
	return p.LoadingText
}

func RecipeProfile() Profile {
	return Profile{
		Name:        ProfileRecipe,
		Title:       "Leftover Food Recipe Generator",
		Placeholder: "Type your leftover food items...",
		SubmitLabel: "Get Recipes",
		LoadingText: DefaultLoadingText,
		Fallback:    "Sorry, I couldn't generate a recipe.",
		Schema:      recipe.Schema(),
		Models:      map[string]string{llm.ProviderGemini: "gemini-1.5-pro"},
		Prompt:      recipe.Prompt,
		Format: func(result generation.Result) string {
			return recipe.Format(result.Value)
		},
	}
}

func TextProfile() Profile {
	return Profile{
		Name:        ProfileText,
		Title:       "Chat",
		Placeholder: "Ask anything...",
		SubmitLabel: "Send",
		LoadingText: DefaultLoadingText,
		Fallback:    "Sorry, I couldn't generate a response.",
	}
}

// StoryProfile sends the input as a free-text story prompt and prefers the
// faster Gemini model.
func StoryProfile() Profile {
	return Profile{
		Name:        ProfileStory,
		Title:       "Magic Backpack Story",
		Placeholder: "Ask for a story...",
		SubmitLabel: "Tell me",
		LoadingText: "Loading story...",
		Fallback:    "Failed to generate story.",
		Models:      map[string]string{llm.ProviderGemini: "gemini-1.5-flash"},
	}
}

var profiles = map[string]func() Profile{
	ProfileRecipe: RecipeProfile,
	ProfileText:   TextProfile,
	ProfileStory:  StoryProfile,
}

func LookupProfile(name string) (Profile, error) {
	build, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile: %s", name)
	}
	return build(), nil
}

func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
