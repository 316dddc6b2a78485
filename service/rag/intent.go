package rag

import (
	_ "embed"
	"strings"
)

// Intent 封闭的查询意图集合，按意图选择系统提示词
type Intent string

const (
	IntentDocumentLookup   Intent = "document_lookup"
	IntentRatioCalculation Intent = "ratio_calculation"
	IntentTrendAnalysis    Intent = "trend_analysis"
)

var (
	//go:embed prompts/document_lookup.txt
	documentLookupPrompt string

	//go:embed prompts/ratio_calculation.txt
	ratioCalculationPrompt string

	//go:embed prompts/trend_analysis.txt
	trendAnalysisPrompt string
)

// 意图的关键词表，命中计分
var intentKeywords = map[Intent][]string{
	IntentDocumentLookup: {
		"find", "search", "locate", "extract", "show", "display",
		"document", "report", "statement", "balance sheet", "income",
	},
	IntentRatioCalculation: {
		"calculate", "ratio", "metric", "roa", "roe", "liquidity",
		"profitability", "leverage", "debt", "equity", "margin",
	},
	IntentTrendAnalysis: {
		"trend", "growth", "change", "compare", "variance", "increase",
		"decrease", "over time", "yoy", "qoq", "seasonal",
	},
}

// 平分时的判定顺序，保证分类结果确定
var intentOrder = []Intent{IntentDocumentLookup, IntentRatioCalculation, IntentTrendAnalysis}

// ClassifyIntent 关键词计分分类，无明显匹配时默认文档检索
func ClassifyIntent(query string) Intent {
	lower := strings.ToLower(query)

	best := IntentDocumentLookup
	bestScore := 0
	for _, intent := range intentOrder {
		score := 0
		for _, keyword := range intentKeywords[intent] {
			if strings.Contains(lower, keyword) {
				score++
			}
		}
		if score > bestScore {
			best = intent
			bestScore = score
		}
	}

	return best
}

// SystemPrompt 意图对应的系统提示词
func SystemPrompt(intent Intent) string {
	switch intent {
	case IntentRatioCalculation:
		return ratioCalculationPrompt
	case IntentTrendAnalysis:
		return trendAnalysisPrompt
	default:
		return documentLookupPrompt
	}
}
