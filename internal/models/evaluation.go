package models

type PassFailStatus string

const (
	StatusPass PassFailStatus = "Pass"
	StatusFail PassFailStatus = "Fail"
)

// EvaluationResult is the structured verdict the model returns for one
// resume screened against one role. It is stored whole in
// Resume.EvaluationDetails, never as its own row.
type EvaluationResult struct {
	OverallScore     int            `json:"overall_score"`
	CompetencyScores map[string]int `json:"competency_scores"`
	Justification    string         `json:"justification"`
	PassFailStatus   PassFailStatus `json:"pass_fail_status"`
	CitedEvidence    []string       `json:"cited_evidence"`
}

// EvaluationFailure replaces EvaluationResult in the stored payload when
// the model call fails during screening. The resume row is still saved
// with score 0.
type EvaluationFailure struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type SimilarResume struct {
	ResumeID string  `json:"resume_id"`
	Score    float32 `json:"score"`
}
