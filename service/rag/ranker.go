package rag

import (
	"finreport-backend/model"
	"sort"
)

const DefaultTopK = 10

// MergeMatches 合并多路召回的候选列表：
// 同一chunk保留相似度最高的一条，按相似度降序排序，截断到topK
// 相同相似度按 (document_id, chunk_index) 升序，输入相同则输出相同
// 纯内存操作，不访问网络和存储
func MergeMatches(topK int, lists ...[]model.ChunkMatch) []model.ChunkMatch {
	if topK <= 0 {
		topK = DefaultTopK
	}

	best := make(map[string]model.ChunkMatch)
	for _, list := range lists {
		for _, match := range list {
			if existing, ok := best[match.ChunkID]; !ok || match.Similarity > existing.Similarity {
				best[match.ChunkID] = match
			}
		}
	}

	merged := make([]model.ChunkMatch, 0, len(best))
	for _, match := range best {
		merged = append(merged, match)
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Similarity != merged[j].Similarity {
			return merged[i].Similarity > merged[j].Similarity
		}
		if merged[i].DocumentID != merged[j].DocumentID {
			return merged[i].DocumentID < merged[j].DocumentID
		}
		return merged[i].ChunkIndex < merged[j].ChunkIndex
	})

	if len(merged) > topK {
		merged = merged[:topK]
	}
	return merged
}
