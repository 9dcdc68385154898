package llm

import "context"

type contextKey string

const purposeKey contextKey = "llm_purpose"

// WithPurpose labels the context with what this call is for, so the
// request log can split criterion grading from second-tier agent
// traffic. The pipeline uses "criterion-eval"; agents use labels like
// "common-issues", "trend-analysis" or "personalized-advice".
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom reads the purpose label back, "unknown" when unset.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}
