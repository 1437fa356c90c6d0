package ai

import (
	"fmt"
	"strings"

	"framecheck/internal/models"
)

// DefaultLanguage is used when the caller passes no response language.
const DefaultLanguage = "English"

// BuildPrompt returns the instruction sent to the model for an analysis of the given mode.
// It is pure: the same inputs always produce the same prompt. Missing counts render as
// "Unknown" and missing text fields as empty strings, so section numbering never moves.
func BuildPrompt(mode models.AnalysisMode, video *models.VideoMetadata, url string, hasTranscript, hasFrames bool, language string) string {
	if video == nil {
		video = &models.VideoMetadata{}
	}
	info := videoInfo(video, url, hasTranscript, hasFrames)
	lang := languageInstruction(language)

	switch mode {
	case models.ModeVerify:
		return fmt.Sprintf(verifyTemplate, info, lang)
	case models.ModeSummary:
		return fmt.Sprintf(summaryTemplate, info, lang)
	}

	var sources string
	if hasTranscript {
		sources += ", transcript"
	}
	if hasFrames {
		sources += " and video frames"
	}

	visual := "No frames available."
	visualCues := ""
	if hasFrames {
		visual = "Based on the video frames: What type of content is shown (talking head, slideshow, footage, animation)? Any on-screen text, graphics, or visual credibility indicators?"
		visualCues = "\n   - Visual credibility cues (professional production, stock footage, manipulated imagery)?"
	}

	claims := "Based on title/description, what claims might this video make?"
	if hasTranscript {
		claims = "List 2-3 key claims made in the video and whether they appear verifiable."
	}

	return fmt.Sprintf(deepTemplate, sources, info, visual, visualCues, claims, lang)
}

// BuildQuestionPrompt returns the instruction for answering a free-text question about a video.
func BuildQuestionPrompt(video *models.VideoMetadata, url string, hasTranscript bool, question, language string) string {
	if video == nil {
		video = &models.VideoMetadata{}
	}
	if language == "" {
		language = DefaultLanguage
	}

	var b strings.Builder
	b.WriteString("You are analyzing a YouTube video to answer a user's specific question.\n\n")
	b.WriteString("**Video Info:**\n")
	fmt.Fprintf(&b, "- Title: %s\n", video.Title)
	fmt.Fprintf(&b, "- Channel: %s\n", video.Channel)
	fmt.Fprintf(&b, "- Description: %s\n", video.Description)
	fmt.Fprintf(&b, "- URL: %s\n", url)
	if hasTranscript {
		fmt.Fprintf(&b, "\n**Transcript:**\n%s\n", video.Transcript)
	}
	fmt.Fprintf(&b, "\n**User's Question:** %s\n\n", question)
	b.WriteString("Please answer this question directly and concisely based on the video information provided.\n")
	b.WriteString("If the answer cannot be determined from the available information, say so honestly.\n\n")
	fmt.Fprintf(&b, "**Respond in %s.**", language)
	return b.String()
}

func videoInfo(video *models.VideoMetadata, url string, hasTranscript, hasFrames bool) string {
	var b strings.Builder
	b.WriteString("**Video Info:**\n")
	fmt.Fprintf(&b, "- Title: %s\n", video.Title)
	fmt.Fprintf(&b, "- Channel: %s\n", video.Channel)
	fmt.Fprintf(&b, "- Subscribers: %s\n", orUnknown(video.SubscriberCount))
	fmt.Fprintf(&b, "- Views: %s\n", orUnknown(video.ViewCount))
	fmt.Fprintf(&b, "- Description: %s\n", video.Description)
	fmt.Fprintf(&b, "- URL: %s", url)
	if hasTranscript {
		fmt.Fprintf(&b, "\n\n**Transcript (partial):**\n%s", video.Transcript)
	}
	if hasFrames {
		fmt.Fprintf(&b, "\n\n**Video Frames:** %d frames from the video are attached for visual analysis.", len(video.Frames))
	}
	return b.String()
}

func languageInstruction(language string) string {
	if language == "" {
		language = DefaultLanguage
	}
	return fmt.Sprintf("**IMPORTANT: Respond entirely in %s. All section headers and content must be in %s.**", language, language)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

const verifyTemplate = `You are a fact-checker and content verification expert. Analyze this YouTube video to determine if the content is reliable and trustworthy.

%s

**IMPORTANT FORMAT: Each section title MUST include a 1-2 word verdict in brackets for quick scanning.**

Provide a VERIFICATION REPORT with these sections:

1. **Reliability Verdict [RELIABLE / QUESTIONABLE / UNRELIABLE]**: Overall assessment in one word, then explain in 1-2 sentences.

2. **Trust Score [X/10]**: Rate from 1-10 with brief justification.

3. **Red Flags Detected [None / Minor / Major]**:
   - Clickbait or sensationalism?
   - Emotional manipulation tactics?
   - Conspiracy theory markers?
   - Misleading claims?
   - Missing context?

4. **Source Credibility [Verified / Unverified / Anonymous]**:
   - Is the creator identifiable and accountable?
   - Do they have expertise on this topic?
   - Any conflicts of interest?

5. **Evidence Check [Strong / Weak / None]**:
   - Are claims backed by evidence?
   - Are sources cited?
   - Can claims be independently verified?

6. **Fact-Check Summary**:
   - List 2-3 main claims and whether they appear true, false, or unverifiable
   - Note any misleading or out-of-context information

7. **Recommendation [Safe to Share / Use Caution / Do Not Share]**: Final recommendation for viewers.

Keep responses concise and focused on verification.

%s`

const summaryTemplate = `Provide a quick, concise summary of this YouTube video.

%s

**IMPORTANT FORMAT: Each section title MUST include a brief verdict in brackets.**

Provide a QUICK SUMMARY with these sections:

1. **Topic [1-3 words]**: What is this video about?

2. **Key Points**: List 3-5 main takeaways as bullet points.

3. **Creator [Type]**: Who made this? (News outlet / Individual creator / Organization / Anonymous)

4. **Tone [Informative / Opinion / Entertainment / Promotional]**: What's the overall tone?

5. **Target Audience**: Who is this video for?

6. **Quick Take**: One sentence summary a viewer should know before watching.

7. **Worth Watching? [Yes / Maybe / No]**: Brief recommendation based on content quality.

Keep the entire response SHORT and SCANNABLE. No lengthy paragraphs.

%s`

const deepTemplate = `Analyze this YouTube video based on its metadata%s:

%s

Please provide a structured analysis with these sections.

**IMPORTANT FORMAT: Each section title MUST include a 1-2 word verdict/summary in brackets for quick scanning.**
Example formats:
- "**Content Summary [Politics/Election]**"
- "**Source Analysis [Unverified]**"
- "**Evidence Evaluation [Weak]**"
- "**Opinion vs Fact [80%% Opinion]**"
- "**Reliability Score [3/10 - Low]**"

1. **Content Summary**: What is this video actually discussing? (2-3 sentences)

2. **Visual Analysis**: %s

3. **Source Analysis**:
   - Who is the creator/channel? What is their background or expertise?
   - Do they have credentials or authority on this topic?
   - Is this an individual, organization, news outlet, or anonymous account?
   - Any affiliations, sponsors, or potential conflicts of interest?

4. **Purpose Assessment**:
   - What appears to be the primary intent? (inform, persuade, entertain, sell, provoke)
   - Is there a clear agenda or bias?
   - Who is the target audience?
   - Is there a call to action (subscribe, buy, vote, share)?

5. **Evidence Evaluation**:
   - What evidence is presented to support the claims?
   - Are sources cited or referenced?
   - Is data/statistics provided? Are they verifiable?
   - Are expert opinions included? Are they credible experts?
   - Quality of evidence: Strong / Moderate / Weak / None

6. **Context Check**:
   - Is important context missing or omitted?
   - Is the information presented in proper historical/social context?
   - Are there alternative perspectives not mentioned?
   - Is the timing of this video relevant (tied to current events)?

7. **Cross-Check Guide**:
   - Suggest 2-3 specific ways to verify the main claims
   - Recommend reliable sources to cross-reference
   - What keywords should viewers search to fact-check?
   - Are there known fact-check articles on this topic?

8. **Opinion vs Fact**: Is this content primarily factual reporting or opinion/commentary? What percentage would you estimate is opinion vs verifiable facts?

9. **Source Reliability Score**:
   - Red flags detected (sensationalism, clickbait, conspiracy markers, emotional manipulation)?%s
   - Overall Reliability Score: Rate 1-10 (1=highly unreliable, 10=highly credible)
   - Confidence level in this assessment: High / Medium / Low

10. **Claims Analysis**: %s

11. **AI Generated Indicators**: Any signs this content is AI-generated (synthetic voice, AI-generated visuals, deepfake indicators, repetitive patterns, disclosure)?

Keep each section concise but informative.

%s`
