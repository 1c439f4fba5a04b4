package assistant

import "google.golang.org/genai"

const (
	coreTemperature         float32 = 0.35
	orchestratorTemperature float32 = 0.6
	topP                    float32 = 0.9
	topK                    float32 = 40
	maxOutputTokensCore     int32   = 1200
	maxOutputTokensChat     int32   = 1600
	jsonMIMEType                    = "application/json"
)

func safetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHateSpeech,
		genai.HarmCategoryHarassment,
		genai.HarmCategoryDangerousContent,
		genai.HarmCategorySexuallyExplicit,
	}
	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, c := range categories {
		settings = append(settings, &genai.SafetySetting{
			Category:  c,
			Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
		})
	}
	return settings
}

// coreGenConfig is used by the agents that must answer with a JSON document.
func coreGenConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(coreTemperature),
		TopP:             genai.Ptr(topP),
		TopK:             genai.Ptr(topK),
		MaxOutputTokens:  maxOutputTokensCore,
		SafetySettings:   safetySettings(),
		ResponseMIMEType: jsonMIMEType,
	}
}

// toolGenConfig is coreGenConfig without the JSON mime type, which Gemini
// does not accept together with function calling.
func toolGenConfig() *genai.GenerateContentConfig {
	cfg := coreGenConfig()
	cfg.ResponseMIMEType = ""
	return cfg
}

func orchestratorGenConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(orchestratorTemperature),
		TopP:            genai.Ptr(topP),
		TopK:            genai.Ptr(topK),
		MaxOutputTokens: maxOutputTokensChat,
		SafetySettings:  safetySettings(),
	}
}
