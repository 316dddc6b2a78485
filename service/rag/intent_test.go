package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyIntent(t *testing.T) {
	cases := []struct {
		query string
		want  Intent
	}{
		{"calculate the debt to equity ratio", IntentRatioCalculation},
		{"what is the ROE for fiscal 2025", IntentRatioCalculation},
		{"how did revenue trend over time", IntentTrendAnalysis},
		{"compare YoY growth across quarters", IntentTrendAnalysis},
		{"show me the balance sheet", IntentDocumentLookup},
		{"find the auditor's opinion in the annual report", IntentDocumentLookup},

		// 无关键词命中时默认文档检索
		{"hello there", IntentDocumentLookup},
		{"", IntentDocumentLookup},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyIntent(tc.query), "query: %q", tc.query)
	}
}

func TestClassifyIntentIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, ClassifyIntent("calculate the profit margin"), ClassifyIntent("CALCULATE THE PROFIT MARGIN"))
}

func TestSystemPromptPerIntent(t *testing.T) {
	prompts := map[Intent]string{
		IntentDocumentLookup:   SystemPrompt(IntentDocumentLookup),
		IntentRatioCalculation: SystemPrompt(IntentRatioCalculation),
		IntentTrendAnalysis:    SystemPrompt(IntentTrendAnalysis),
	}

	seen := map[string]Intent{}
	for intent, prompt := range prompts {
		assert.NotEmpty(t, prompt, "intent: %s", intent)
		if prev, ok := seen[prompt]; ok {
			t.Errorf("intents %s and %s share the same prompt", prev, intent)
		}
		seen[prompt] = intent
	}

	// 未知意图回退到文档检索提示词
	assert.Equal(t, prompts[IntentDocumentLookup], SystemPrompt(Intent("unknown")))
}
