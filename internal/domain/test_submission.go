package domain

import (
	"time"
)

// PassingScorePercent is the certification-test threshold above which a SEC
// becomes bonus-eligible.
const PassingScorePercent = 70

type TestResponse struct {
	QuestionID int64  `json:"questionId"`
	Answer     string `json:"answer"`
	Correct    bool   `json:"correct"`
}

// TestSubmission is one certification-test attempt. Rows are immutable after
// creation; only the SEC's bonus-eligibility flag may flip as a consequence.
type TestSubmission struct {
	ID                    int64          `json:"id"`
	SECID                 int64          `json:"secId"`
	Score                 int32          `json:"score"`
	TotalQuestions        int32          `json:"totalQuestions"`
	CompletionTimeSeconds int32          `json:"completionTimeSeconds"`
	Responses             []TestResponse `json:"responses"`
	CreatedAt             time.Time      `json:"createdAt"`
}

func (t *TestSubmission) Passed() bool {
	if t.TotalQuestions == 0 {
		return false
	}
	return int(t.Score)*100 >= PassingScorePercent*int(t.TotalQuestions)
}
