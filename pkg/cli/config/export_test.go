package config

// NewAppForTest creates an App config for testing purposes
func NewAppForTest(tuningPath, archiveBucket string) *App {
	return &App{
		tuningPath:    tuningPath,
		archiveBucket: archiveBucket,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewLLMForTest creates an LLM config for testing purposes
func NewLLMForTest(provider, geminiProject, geminiLocation, openaiAPIKey string) *LLM {
	return &LLM{
		provider:       provider,
		geminiProject:  geminiProject,
		geminiLocation: geminiLocation,
		openaiAPIKey:   openaiAPIKey,
	}
}

// NewSearchForTest creates a Search config for testing purposes
func NewSearchForTest(braveAPIKey string, webMax, arxivMax int) *Search {
	return &Search{
		braveAPIKey:     braveAPIKey,
		webMaxResults:   webMax,
		arxivMaxResults: arxivMax,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID, databaseID string) *Repository {
	return &Repository{
		backend:    backend,
		projectID:  projectID,
		databaseID: databaseID,
	}
}
