package llm

// schemaField describes one required string property of the response schema.
type schemaField struct {
	Name        string
	Description string
}

const schemaDescription = "A self-contained single-page web application split into markup, stylesheet and script."

var schemaFields = []schemaField{
	{
		Name:        "html",
		Description: "The complete HTML code for the page body. It should be self-contained within a single file and not require external HTML files. All necessary elements should be included.",
	},
	{
		Name:        "css",
		Description: "The complete CSS code. It should style the HTML elements and be self-contained. Do not use external CSS frameworks unless specifically asked.",
	},
	{
		Name:        "js",
		Description: "The complete JavaScript code for interactivity. It should be vanilla JavaScript and self-contained. Do not use external libraries unless specifically asked.",
	},
}

func requiredFields() []string {
	names := make([]string, len(schemaFields))
	for i, f := range schemaFields {
		names[i] = f.Name
	}
	return names
}

// schemaProperties returns the JSON Schema "properties" object.
func schemaProperties() map[string]any {
	props := make(map[string]any, len(schemaFields))
	for _, f := range schemaFields {
		props[f.Name] = map[string]any{
			"type":        "string",
			"description": f.Description,
		}
	}
	return props
}

// jsonSchema returns the full JSON Schema for the response object.
func jsonSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"description":          schemaDescription,
		"properties":           schemaProperties(),
		"required":             requiredFields(),
		"additionalProperties": false,
	}
}
