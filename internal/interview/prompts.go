package interview

import (
	"fmt"
	"strings"

	"github.com/Djalilu/interview-app/internal/domain"
)

// EndCommand is the sentinel phrase that ends a conversation-mode interview.
// It is intercepted before being forwarded to the collaborator.
const EndCommand = "end interview"

// IsEndCommand reports whether text is the sentinel command, matched
// case-insensitively after trimming surrounding whitespace.
func IsEndCommand(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), EndCommand)
}

func personaInstruction(company, jobRole, companyURL, languageName string) string {
	return fmt.Sprintf("You are a senior hiring manager at %s with 10 years of experience, "+
		"interviewing a candidate for the %s position. First, analyze the content of the provided "+
		"company URL (%s) to understand the company's core values, mission, recent news, and product "+
		"lineup. You must embody the company's characteristics, which you've learned from the URL, in "+
		"your persona. You prefer to ask deep, probing questions that connect a candidate's skills and "+
		"problem-solving abilities to the company's actual business. Your tone should be professional "+
		"but approachable. All your questions and responses must be in %s. Start the interview now with "+
		"your first question, and do not add any conversational filler before it. Just ask the question.",
		company, jobRole, companyURL, languageName)
}

// serializeTranscript renders the conversation as alternating
// Interviewer/Candidate turns.
func serializeTranscript(messages []domain.Message) string {
	turns := make([]string, 0, len(messages))
	for _, msg := range messages {
		speaker := "Candidate"
		if msg.Sender == domain.SenderAI {
			speaker = "Interviewer"
		}
		turns = append(turns, fmt.Sprintf("%s: %s", speaker, msg.Text))
	}
	return strings.Join(turns, "\n\n")
}

func conversationFeedbackPrompt(transcript, company, jobRole, languageName string) string {
	return fmt.Sprintf("The interview is now over. Based on the entire conversation below, write a "+
		"feedback report for the candidate. The interview was for a %s role at %s. The report must be "+
		"written in %s in a professional and encouraging tone. It must include the following sections, "+
		"using these exact headings: \"Overall Assessment\", \"Key Strengths\", and \"Areas for "+
		"Improvement\". For strengths and improvements, you must refer to specific examples from our "+
		"conversation. Do not use any markdown formatting like bolding or italics. Just return the "+
		"plain text report.\n\n<CONVERSATION_HISTORY>\n%s\n</CONVERSATION_HISTORY>\n",
		jobRole, company, languageName, transcript)
}

// serializeAnswers renders the recorded answers as question/answer pairs.
func serializeAnswers(answers []domain.Answer) string {
	pairs := make([]string, 0, len(answers))
	for _, a := range answers {
		pairs = append(pairs, fmt.Sprintf("Question: %s\nAnswer: %s", a.QuestionText, a.AnswerText))
	}
	return strings.Join(pairs, "\n\n---\n\n")
}

func answersFeedbackPrompt(formattedAnswers, jobRole, languageName string) string {
	return fmt.Sprintf("The interview is now over. Based on the candidate's answers below, write a "+
		"feedback report. The interview was for a %s role. The report must be written in %s in a "+
		"professional and encouraging tone. It must include the following sections, using these exact "+
		"headings: \"Overall Assessment\", \"Key Strengths\", and \"Areas for Improvement\". For "+
		"strengths and improvements, you must refer to specific examples from the provided answers. "+
		"Do not use any markdown formatting like bolding or italics. Just return the plain text "+
		"report.\n\n<CANDIDATE_ANSWERS>\n%s\n</CANDIDATE_ANSWERS>\n",
		jobRole, languageName, formattedAnswers)
}

func questionListPrompt(jobRole, languageName string) string {
	return fmt.Sprintf("Generate a list of 5 diverse interview questions for a '%s' position. The "+
		"questions should cover categories like Behavioral, Technical, and Situational. Provide the "+
		"response in %s. Each question must have a unique string id you generate (e.g., \"q1\").",
		jobRole, languageName)
}
