package generation

import (
	"fmt"
	"strings"

	"github.com/khoahotran/studyplan/internal/domain/profile"
)

const (
	notSpecified  = "Not specified"
	noneSpecified = "None specified"
)

const roadmapSystemPrompt = "You are an expert learning advisor who creates personalized, structured study roadmaps. Always return valid JSON."

const certificationSystemPrompt = "You are a certification advisor. Recommend relevant certifications based on user goals and learning path. Always return valid JSON."

const roadmapFormat = `Create a comprehensive, structured learning roadmap with the following format:
1. A clear title for the roadmap
2. A brief description
3. A list of topics/modules in order, each with:
   - Topic name
   - Description
   - Estimated hours to complete
   - Prerequisites (if any)
   - Learning objectives

The roadmap should be realistic based on the time availability and should progress from foundational concepts to advanced topics.

Return the response as a JSON object with this structure:
{
  "title": "Roadmap title",
  "description": "Brief description",
  "estimated_duration_weeks": number,
  "topics": [
    {
      "topic_name": "Topic name",
      "description": "Topic description",
      "estimated_hours": number,
      "prerequisites": ["prereq1", "prereq2"],
      "learning_objectives": ["objective1", "objective2"]
    }
  ]
}

IMPORTANT: Return ONLY valid JSON, no additional text or markdown formatting.`

const certificationFormat = `Recommend 3-5 relevant certifications with:
- Certification name
- Provider (e.g., AWS, Google, Microsoft, etc.)
- Brief description
- Difficulty level (beginner, intermediate, advanced)
- Estimated study hours
- Why it's relevant to the user's goals
- Priority (1-5, where 5 is highest priority)

Return as JSON object with a "certifications" array:
{
  "certifications": [
    {
      "name": "Certification name",
      "provider": "Provider name",
      "description": "Description",
      "difficulty_level": "beginner|intermediate|advanced",
      "estimated_study_hours": number,
      "recommendation_reason": "Why it's relevant",
      "priority": number
    }
  ]
}

IMPORTANT: Return ONLY valid JSON, no additional text or markdown formatting.`

// buildRoadmapPrompt renders every profile field. Absent values get an explicit placeholder.
func buildRoadmapPrompt(p profile.Profile) string {
	var b strings.Builder

	b.WriteString("Create a personalized study roadmap based on the following user profile:\n\n")
	fmt.Fprintf(&b, "Background: %s\n", orDefault(p.Background, notSpecified))
	fmt.Fprintf(&b, "Current Skills: %s\n", joinOrDefault(p.CurrentSkills, noneSpecified))
	fmt.Fprintf(&b, "Learning Goals: %s\n", orDefault(p.LearningGoals, notSpecified))
	fmt.Fprintf(&b, "Time Available: %d hours per week\n", p.HoursPerWeek)
	fmt.Fprintf(&b, "Learning Style: %s\n", orDefault(p.LearningStyle, notSpecified))
	fmt.Fprintf(&b, "Target Industry: %s\n", orDefault(p.TargetIndustry, notSpecified))
	b.WriteString("\n")
	b.WriteString(roadmapFormat)

	return b.String()
}

func buildCertificationPrompt(p profile.Profile, topicNames []string) string {
	var b strings.Builder

	b.WriteString("Based on the user's learning goals, target industry, and roadmap topics, recommend relevant certifications.\n\n")
	b.WriteString("User Profile:\n")
	fmt.Fprintf(&b, "- Learning Goals: %s\n", orDefault(p.LearningGoals, notSpecified))
	fmt.Fprintf(&b, "- Target Industry: %s\n", orDefault(p.TargetIndustry, notSpecified))
	fmt.Fprintf(&b, "- Current Skills: %s\n", joinOrDefault(p.CurrentSkills, noneSpecified))
	fmt.Fprintf(&b, "- Roadmap Topics: %s\n", strings.Join(topicNames, ", "))
	b.WriteString("\n")
	b.WriteString(certificationFormat)

	return b.String()
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func joinOrDefault(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}
