package ai

const alignmentSystemPrompt = "You are an equity strategist at a top-tier investment bank. " +
	"Translate the user's belief into investable signals for a paper trading simulator.\n" +
	"Return clear, concise, and actionable instruments while calling out areas of uncertainty."

const reviewSystemPrompt = "You are a macro research analyst creating a balanced brief on an investment thesis.\n" +
	"Provide concise bullet points, flagging key risks and supportive data."

// alignmentSchema is the provider-side constraint for the alignment call.
// The same shape is re-checked locally in decodeAlignment.
func alignmentSchema() namedSchema {
	levelEnum := []string{"low", "medium", "high"}

	ticker := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"symbol":           map[string]interface{}{"type": "string"},
			"conviction":       map[string]interface{}{"enum": levelEnum},
			"rationale":        map[string]interface{}{"type": "string"},
			"suggested_weight": map[string]interface{}{"type": "number"},
			"confidence":       map[string]interface{}{"enum": levelEnum},
		},
		"required":             []string{"symbol", "conviction", "rationale"},
		"additionalProperties": false,
	}

	return namedSchema{
		Name:   "thesis_alignment",
		Strict: true,
		Schema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"thesis_summary": map[string]interface{}{"type": "string"},
				"sectors_affected": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"name":      map[string]interface{}{"type": "string"},
							"direction": map[string]interface{}{"enum": []string{"positive", "negative", "neutral"}},
							"notes":     map[string]interface{}{"type": "string"},
						},
						"required":             []string{"name", "direction"},
						"additionalProperties": false,
					},
				},
				"tickers_long":  map[string]interface{}{"type": "array", "items": ticker},
				"tickers_short": map[string]interface{}{"type": "array", "items": ticker},
				"rationale":     map[string]interface{}{"type": "string"},
				"confidence_notes": map[string]interface{}{
					"type":  "array",
					"items": map[string]interface{}{"type": "string"},
				},
				"macro_signals": map[string]interface{}{
					"type":  "array",
					"items": map[string]interface{}{"type": "string"},
				},
			},
			"required": []string{
				"thesis_summary",
				"sectors_affected",
				"tickers_long",
				"tickers_short",
				"rationale",
			},
			"additionalProperties": false,
		},
	}
}

// reviewSchema is the provider-side constraint for the review call.
func reviewSchema() namedSchema {
	stringList := map[string]interface{}{
		"type":  "array",
		"items": map[string]interface{}{"type": "string"},
	}

	return namedSchema{
		Name:   "thesis_review",
		Strict: true,
		Schema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"pros":               stringList,
				"cons":               stringList,
				"related_themes":     stringList,
				"historical_analogs": stringList,
				"counter_theses":     stringList,
				"confidence_level":   map[string]interface{}{"enum": []string{"low", "medium", "high"}},
			},
			"required":             []string{"pros", "cons", "related_themes"},
			"additionalProperties": false,
		},
	}
}
