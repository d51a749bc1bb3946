package services

import "fmt"

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildRubricPrompt creates the prompt that turns an existing rubric into
// one tailored to a new job description, preserving the format.
func (pb *PromptBuilder) BuildRubricPrompt(oldRubric, jobDescription string) string {
	return fmt.Sprintf(`You are an expert Talent Acquisition AI Assistant.
I have this evaluation rubric of some other role and I want a new evaluation rubric for the JD I have uploaded.
Here is the Old evaluation rubric:
%s

Here is the Job Description for the new role:
%s

I want you to create a new evaluation rubric in the same format as the old one,
so that interviewers and AI can understand correctly to assess Resumes.
Ensure the new rubric is tailored specifically to the provided Job Description.`,
		oldRubric, jobDescription)
}

// BuildEvaluationPrompt creates the prompt that scores a resume against a
// job description and rubric, requesting a strict JSON verdict.
func (pb *PromptBuilder) BuildEvaluationPrompt(jobDescription, rubric, resumeText string) string {
	return fmt.Sprintf(`You are an expert Talent Acquisition AI Assistant. Your primary function is to assist Talent Acquisition professionals by analyzing candidate CVs against a specific Job Description and a detailed evaluation rubric. You will provide a preliminary assessment and stack ranking in a structured consolidated table format. Your analysis must be objective, strictly evidence-based (citing information from the CVs), and clearly highlight candidate alignment with the role's requirements. Your output will be used for preliminary screening, with human oversight and interviews to follow. Accuracy, adherence to the requested format, and clear justification are paramount.

Job Description:
%s

Evaluation Rubric:
%s

Candidate CV Text:
%s

Please evaluate the candidate CV against the Job Description and Rubric.
Output the results as a JSON object with the following structure:
{
    "overall_score": <integer from 1 to 100>,
    "competency_scores": {
        "Competency 1 Name": <integer score from 1 to 4>,
        "Competency 2 Name": <integer score from 1 to 4>,
        ...
    },
    "justification": "Detailed justification based on evidence from CV, explaining scores for each competency and overall fit.",
    "pass_fail_status": "Pass" or "Fail",
    "cited_evidence": [
        "Specific quote or phrase from CV supporting a point",
        "Another specific quote or phrase from CV"
    ]
}
Ensure all competency names in "competency_scores" exactly match the rubric.`,
		jobDescription, rubric, resumeText)
}
