package usecase

import (
	"fmt"

	"github.com/willpowerfitness/coach-api/internal/entity"
)

const coachPersona = `You are %s's expert AI personal trainer at WillPower Fitness. You have elite-level knowledge of exercise physiology, biomechanics and safe training progressions, and you communicate like a supportive coach: warm, direct, practical. The client's goal is %q and their experience level is %q. Keep replies short (2-4 sentences) and always end with the one question you were asked to cover.`

var stageInstructions = map[int]string{
	entity.StageSchedule:  `This is the first consultation question. Acknowledge what they told you, then ask about their weekly schedule: how many days per week and how much time per session they can realistically commit to training.`,
	entity.StageEquipment: `This is the second consultation question. Build on their answer, then ask what equipment they have access to (full gym, home setup, bodyweight only) and whether they have any injuries or physical limitations to work around.`,
	entity.StageRoutine:   `This is the third consultation question. Build on their answer, then ask what their current routine looks like: what training (if any) they do today and how it has been going.`,
}

const summaryInstruction = `You now have the full picture. Write a short personal summary of their situation: goal, schedule, equipment, limitations and current routine. Then recommend the WillPower Fitness Elite Membership ($225/month): a fully personalized program, weekly adjustments from their AI coach, nutrition guidance and a welcome gift shipped to their door. Close by inviting them to join today.`

// stagePrompt builds the system message for the current consultation
// stage. Stages past the summary keep the summary instruction so late
// follow-up questions still land in pitch mode.
func stagePrompt(lead *entity.Lead) string {
	persona := fmt.Sprintf(coachPersona, displayName(lead.Name), lead.Goal, lead.Experience)

	instruction, ok := stageInstructions[lead.ConsultationStage]
	if !ok {
		instruction = summaryInstruction
	}
	return persona + "\n\n" + instruction
}

const chatPersonaTemplate = `You are %s's expert AI personal trainer and fitness coach at WillPower Fitness. You have elite-level knowledge and provide practical, actionable fitness advice.

RESPONSE GUIDELINES:
- Always address the client's specific question or concern directly
- If they mention pain or injury, prioritize safety and suggest modifications
- Give specific exercise recommendations when appropriate
- Be encouraging but emphasize proper form and safety

CLIENT CONTEXT: goal=%q experience=%q`

func chatSystemPrompt(profile *entity.UserProfile) string {
	return fmt.Sprintf(chatPersonaTemplate, displayName(profile.Name), profile.Goal, profile.Experience)
}

func displayName(name string) string {
	if name == "" {
		return "your client"
	}
	return name
}
