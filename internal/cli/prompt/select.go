package prompt

import (
	"github.com/manifoldco/promptui"
)

// SelectOption represents an item in a selection list.
type SelectOption struct {
	Label       string
	Value       string
	Description string
}

// selectTemplates returns the standard templates for selection prompts.
func selectTemplates(withDetails bool) *promptui.SelectTemplates {
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label | white }}",
		Selected: "* {{ .Label | green }}",
	}
	if withDetails {
		templates.Details = `
{{ "Payload:" | faint }}	{{ .Description }}`
	}
	return templates
}

// Select prompts the user to select from a list of options.
// Returns the selected option's value.
func Select(label string, options []SelectOption) (string, error) {
	withDetails := false
	for _, opt := range options {
		if opt.Description != "" {
			withDetails = true
			break
		}
	}

	prompt := promptui.Select{
		Label:     label,
		Items:     options,
		Templates: selectTemplates(withDetails),
		Size:      10,
		Searcher: func(input string, index int) bool {
			return containsFold(options[index].Label, input)
		},
	}

	i, _, err := prompt.Run()
	if err != nil {
		return "", wrapError(err)
	}

	return options[i].Value, nil
}
