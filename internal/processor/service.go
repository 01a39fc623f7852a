package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/LJTian/NewsBrief/internal/collector"
	"github.com/LJTian/NewsBrief/internal/llm"
)

const (
	defaultBiasReasoning = "Error calculating bias"
	maxKeyPoints         = 5
	biasLimit            = 10
)

var (
	errMissingSummary = errors.New("annotation response has no summary")
	errMissingResults = errors.New("annotation response has no results")
)

const annotateInstructions = `Analyze the following list of news articles:
%s

Tasks:
1. Detect duplicates: Identify stories covering the exact same event, even when reported by different sources. The first listed occurrence is canonical and must not be flagged; mark every later occurrence as a duplicate and set duplicateOfIndex to the canonical article's index.
2. Bias analysis: Assign an integer bias score from -10 (far left) to 10 (far right), with 0 being neutral, inferred from the title and the source's framing conventions. Provide a 1-sentence reasoning.
3. Paywall detection: Heuristically guess if the source commonly uses hard paywalls (return true/false).
4. Generate a daily summary: An engaging overview paragraph and 3-5 key points representing today's most important distinct stories.

Return pure JSON with the following structure:
{
  "results": [
    {
      "originalIndex": 0,
      "biasScore": 0,
      "biasReasoning": "string",
      "isDuplicate": false,
      "duplicateOfIndex": null,
      "isPaywalled": false
    }
  ],
  "summary": {
    "overview": "string",
    "keyPoints": ["string1", "string2", "string3"]
  }
}`

type promptArticle struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Source  string `json:"source"`
	Snippet string `json:"snippet"`
}

type annotation struct {
	OriginalIndex    *int    `json:"originalIndex"`
	BiasScore        float64 `json:"biasScore"`
	BiasReasoning    string  `json:"biasReasoning"`
	IsDuplicate      bool    `json:"isDuplicate"`
	DuplicateOfIndex *int    `json:"duplicateOfIndex"`
	IsPaywalled      bool    `json:"isPaywalled"`
}

type annotationResponse struct {
	// 缺失 results 视为失败；显式的空列表按逐条默认值处理
	Results *[]annotation `json:"results"`
	Summary *DailySummary `json:"summary"`
}

func buildAnnotatePrompt(items []collector.NewsItem) (string, error) {
	list := make([]promptArticle, len(items))
	for i, it := range items {
		list[i] = promptArticle{ID: i, Title: it.Title, Source: it.Source, Snippet: it.Description}
	}
	bs, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("marshal articles: %w", err)
	}
	return fmt.Sprintf(annotateInstructions, bs), nil
}

// annotateWithService 一次批量请求；任何错误都交给调用方回落
func (a *Annotator) annotateWithService(ctx context.Context, items []collector.NewsItem, cycleAt time.Time) (Result, error) {
	prompt, err := buildAnnotatePrompt(items)
	if err != nil {
		return Result{}, err
	}

	content, err := a.client.Complete(ctx, llm.Request{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		JSON:     true,
	})
	if err != nil {
		return Result{}, err
	}

	parsed, err := parseAnnotationResponse(content)
	if err != nil {
		return Result{}, err
	}

	results := *parsed.Results
	byIndex := make(map[int]annotation, len(results))
	for _, r := range results {
		if r.OriginalIndex == nil {
			continue
		}
		if _, dup := byIndex[*r.OriginalIndex]; !dup {
			byIndex[*r.OriginalIndex] = r
		}
	}

	articles := make([]EnrichedArticle, len(items))
	for i, it := range items {
		ea := EnrichedArticle{
			NewsItem:      it,
			ID:            articleID(i, cycleAt),
			BiasReasoning: defaultBiasReasoning,
		}
		if r, ok := byIndex[i]; ok {
			ea.BiasScore = clampBias(r.BiasScore)
			if s := strings.TrimSpace(r.BiasReasoning); s != "" {
				ea.BiasReasoning = s
			}
			ea.IsDuplicate = r.IsDuplicate
			ea.IsPaywalled = r.IsPaywalled
			// 只接受指向更靠前文章的引用
			if r.IsDuplicate && r.DuplicateOfIndex != nil && *r.DuplicateOfIndex >= 0 && *r.DuplicateOfIndex < i {
				ea.DuplicateOfID = articleID(*r.DuplicateOfIndex, cycleAt)
			}
		}
		articles[i] = ea
	}

	return Result{
		Articles: articles,
		Summary:  *parsed.Summary,
		Path:     PathService,
	}, nil
}

func parseAnnotationResponse(content string) (*annotationResponse, error) {
	var parsed annotationResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &parsed); err != nil {
		return nil, fmt.Errorf("decode annotation response: %w", err)
	}
	if parsed.Results == nil {
		return nil, errMissingResults
	}
	if parsed.Summary == nil {
		return nil, errMissingSummary
	}

	s := parsed.Summary
	s.Overview = strings.TrimSpace(s.Overview)
	points := make([]string, 0, len(s.KeyPoints))
	for _, p := range s.KeyPoints {
		if p = strings.TrimSpace(p); p != "" {
			points = append(points, p)
		}
	}
	if len(points) > maxKeyPoints {
		points = points[:maxKeyPoints]
	}
	s.KeyPoints = points
	if s.Overview == "" && len(s.KeyPoints) == 0 {
		return nil, errMissingSummary
	}
	return &parsed, nil
}

func clampBias(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	n := int(math.Round(v))
	if n > biasLimit {
		return biasLimit
	}
	if n < -biasLimit {
		return -biasLimit
	}
	return n
}
