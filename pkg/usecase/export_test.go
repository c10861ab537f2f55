package usecase

// ValidatePlan is exported for testing
var ValidatePlan = validatePlan

// CleanQueries is exported for testing
var CleanQueries = cleanQueries

// ExtractCitations is exported for testing
var ExtractCitations = extractCitations

// BuildSynthesisSystemPrompt is exported for testing
var BuildSynthesisSystemPrompt = buildSynthesisSystemPrompt

// PlannerResponse is exported for testing
type PlannerResponse = plannerResponse
