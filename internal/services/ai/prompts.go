package ai

import (
	"fmt"

	"github.com/benvon/review-memory/internal/models"
)

// Output token budgets per operation
const (
	ReviewMaxTokens = 1500
	AssistMaxTokens = 1024
)

var modeSystemPrompts = map[models.ReviewMode]string{
	models.ReviewModeSecurity: `You are a security expert reviewing code for vulnerabilities. Focus on:
- SQL injection, XSS, CSRF risks
- Input validation and sanitization
- Authentication and authorization issues
- Data exposure and sensitive information handling
- Cryptography and secure communication
Be thorough and explain the security impact of each finding.`,

	models.ReviewModePerformance: `You are a performance optimization expert. Focus on:
- Time complexity and algorithmic efficiency
- Memory usage and resource management
- Database query optimization
- Caching opportunities
- Bottlenecks and scalability issues
Provide specific performance metrics and optimization suggestions.`,

	models.ReviewModeStyle: `You are a code style and readability expert. Focus on:
- Code organization and structure
- Naming conventions and clarity
- Documentation and comments
- Design patterns and best practices
- Maintainability and refactoring opportunities
Emphasize clean code principles.`,

	models.ReviewModeComplexity: `You are a code complexity analyst. Analyze:
- Cyclomatic complexity
- Code maintainability
- Function length and responsibilities
- Nesting depth and cognitive load
- Code duplication
Provide complexity scores and simplification suggestions.`,

	models.ReviewModeGeneral: `You are an expert code reviewer. Provide balanced feedback on:
- Code quality and best practices
- Potential bugs and edge cases
- Performance considerations
- Security concerns
- Readability and maintainability`,
}

// Fixed system prompts for the assistant operations
const (
	SuggestFixSystemPrompt = "You are an expert code fixer. Provide corrected code and clear explanations."
	ExplainSystemPrompt    = "You are an expert programming teacher who explains concepts clearly and patiently."
	ComplexitySystemPrompt = "You are a code metrics expert. Provide accurate complexity analysis."
)

// ReviewSystemPrompt returns the persona prompt for mode, followed by userContext when present.
// Unknown modes fall back to the general persona.
func ReviewSystemPrompt(mode models.ReviewMode, userContext string) string {
	prompt, ok := modeSystemPrompts[mode]
	if !ok {
		prompt = modeSystemPrompts[models.ReviewModeGeneral]
	}
	if userContext != "" {
		prompt += "\n\n" + userContext
	}
	return prompt
}

// ReviewUserPrompt embeds code in a fenced block tagged with language
func ReviewUserPrompt(code, language string) string {
	label := language
	if label == "" {
		label = "code"
	}
	return fmt.Sprintf("Review this %s:\n\n```%s\n%s\n```\n\n"+
		"Provide:\n"+
		"1. Overall assessment\n"+
		"2. Specific issues (if any)\n"+
		"3. Best practice suggestions\n"+
		"4. Security concerns (if any)", label, language, code)
}

// SuggestFixPrompt asks for a corrected version of code addressing issue
func SuggestFixPrompt(code, language, issue string) string {
	return fmt.Sprintf("Given this %s code with the issue: %q\n\n```%s\n%s\n```\n\n"+
		"Provide:\n"+
		"1. A corrected version of the code\n"+
		"2. Brief explanation of what was fixed\n"+
		"3. Why this is better\n\n"+
		"Format your response as:\n"+
		"FIXED CODE:\n```\n[corrected code here]\n```\n\n"+
		"EXPLANATION:\n[explanation here]", language, issue, language, code)
}

// ExplainPrompt asks for a beginner-friendly answer to question about code
func ExplainPrompt(code, language, question string) string {
	return fmt.Sprintf("You are a patient coding teacher. A student is looking at this %s code and asks: %q\n\n"+
		"```%s\n%s\n```\n\n"+
		"Explain clearly with:\n"+
		"1. Direct answer to their question\n"+
		"2. Relevant code examples\n"+
		"3. Common pitfalls to avoid\n"+
		"4. Best practices\n\n"+
		"Keep explanations beginner-friendly but technically accurate.", language, question, language, code)
}

// ComplexityPrompt asks for complexity metrics of code
func ComplexityPrompt(code, language string) string {
	return fmt.Sprintf("Analyze the complexity of this %s code and provide metrics:\n\n```%s\n%s\n```\n\n"+
		"Provide:\n"+
		"1. Cyclomatic Complexity: [1-10 score]\n"+
		"2. Cognitive Complexity: [1-10 score]\n"+
		"3. Maintainability Index: [1-100 score]\n"+
		"4. Lines of Code: [count]\n"+
		"5. Key Issues: [list main problems]\n"+
		"6. Refactoring Suggestions: [specific improvements]\n\n"+
		"Format as JSON-like structure for easy parsing.", language, language, code)
}
