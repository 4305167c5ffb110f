package usecase

import (
	"fmt"
	"strings"

	"ai-debate-orchestrator/internal/domain/model"
	"ai-debate-orchestrator/internal/domain/ports/adapter"
)

// Style affects prompting only, never the protocol.
func stylePreamble(style model.DebateStyle) string {
	switch style {
	case model.StyleAdversarial:
		return "You are taking part in an adversarial debate. Challenge weak reasoning directly and defend your own position with evidence."
	case model.StyleRedTeam:
		return "You are taking part in a red-team review. Actively look for flaws, failure modes and attack surfaces in the proposals on the table."
	case model.StylePanel:
		return "You are a member of an expert panel. Contribute your specialist perspective and build a rounded picture together."
	default:
		return "You are taking part in a cooperative planning debate. Build on the strongest ideas raised so far and work toward a shared recommendation."
	}
}

// buildTurnMessages assembles the completion context for one participant's
// turn: system framing, the transcript so far (own messages as assistant,
// everyone else's attributed inline), pending interjections, then a closing
// user nudge so providers that require a trailing user message are happy.
func buildTurnMessages(sess *model.DebateSession, p model.Participant, injs []*model.Interjection) []adapter.Message {
	var sys strings.Builder
	sys.WriteString(stylePreamble(sess.Style))
	fmt.Fprintf(&sys, "\n\nThe question under discussion: %s", sess.Question)
	if p.Role != "" {
		fmt.Fprintf(&sys, "\n\nYour role in this debate: %s.", p.Role)
	}
	if p.Instructions != "" {
		fmt.Fprintf(&sys, "\n%s", p.Instructions)
	}
	sys.WriteString("\nKeep your contribution focused; state concrete positions and recommendations.")

	msgs := make([]adapter.Message, 0, len(sess.Messages)+len(injs)+2)
	msgs = append(msgs, adapter.Message{Role: "system", Content: sys.String()})

	for _, m := range sess.Messages {
		if m.ParticipantID == p.ID {
			msgs = append(msgs, adapter.Message{Role: "assistant", Content: m.Content})
			continue
		}
		name := participantName(sess, m.ParticipantID)
		msgs = append(msgs, adapter.Message{
			Role:    "user",
			Content: fmt.Sprintf("[%s] %s", name, m.Content),
		})
	}

	for _, inj := range injs {
		note := fmt.Sprintf("[User interjection (%s)] %s", inj.Type, inj.Content)
		if inj.TargetMessageID != "" {
			note = fmt.Sprintf("[User interjection (%s), regarding an earlier message] %s", inj.Type, inj.Content)
		}
		msgs = append(msgs, adapter.Message{Role: "user", Content: note})
	}

	msgs = append(msgs, adapter.Message{
		Role:    "user",
		Content: fmt.Sprintf("It is your turn, %s. Respond to the discussion so far.", p.Name()),
	})
	return msgs
}

// buildSynthesisMessages reduces the whole transcript to a single synthesis
// request.
func buildSynthesisMessages(sess *model.DebateSession) []adapter.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nTranscript:\n", sess.Question)
	for _, m := range sess.Messages {
		fmt.Fprintf(&b, "[turn %d, %s] %s\n", m.Turn, participantName(sess, m.ParticipantID), m.Content)
	}
	b.WriteString("\nWrite a concise consensus summary of this debate: the positions the participants converged on, and what remains unresolved.")

	return []adapter.Message{
		{Role: "system", Content: "You are the moderator of a multi-model debate. Synthesize a faithful consensus; do not invent agreement that is not in the transcript."},
		{Role: "user", Content: b.String()},
	}
}

func participantName(sess *model.DebateSession, participantID string) string {
	for _, p := range sess.Participants {
		if p.ID == participantID {
			return p.Name()
		}
	}
	return participantID
}
