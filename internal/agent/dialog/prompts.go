package dialog

import (
	"fmt"

	"github.com/voicedesk/server/internal/agent/model"
)

// Canned questions for the single first missing checklist field. The field
// order of the checklist, not the utterance, decides which one is asked.
var restaurantQuestions = map[string]string{
	model.FieldName:      "I'd be happy to help you with a reservation. Could I start with your full name?",
	model.FieldPhone:     "Thank you! And what's the best phone number to reach you at?",
	model.FieldDate:      "What date would you like to dine with us?",
	model.FieldTime:      "And what time works best for you?",
	model.FieldPartySize: "How many people will be joining you?",
}

var financialQuestions = map[string]string{
	model.FieldName:   "I'll be happy to help you. First, could you tell me your full name?",
	model.FieldPhone:  "Thank you! And what's the best phone number for our team to reach you at?",
	model.FieldReason: "Perfect! Now, could you briefly tell me what you're calling about today?",
}

func questionFor(domain model.Domain, field string) string {
	var q string
	switch domain {
	case model.DomainRestaurant:
		q = restaurantQuestions[field]
	case model.DomainFinancial:
		q = financialQuestions[field]
	}
	if q == "" {
		q = "I need a bit more information. Could you repeat that?"
	}
	return q
}

func repromptReply() model.TurnResponse {
	return model.TurnResponse{
		ReplyText:         "I'm sorry, I didn't catch that. Could you please repeat that?",
		ContinueListening: true,
	}
}

func apologyReply(domain model.Domain) model.TurnResponse {
	if domain == model.DomainRestaurant {
		return model.TurnResponse{
			ReplyText:       "I apologize for the technical difficulty. Let me transfer you to our hostess who can help you right away.",
			TransferToHuman: true,
		}
	}
	return model.TurnResponse{
		ReplyText: "I apologize for the technical difficulty. Please call back during our business hours and our team will be happy to assist you.",
	}
}

func otherReply() string {
	return "I'm here to help with reservations, menu questions, or restaurant information. What can I assist you with?"
}

func reservationConfirmation(r *model.Reservation) string {
	return fmt.Sprintf(
		"Perfect, %s! I have your table for %s on %s at %s. We'll see you then!",
		r.CustomerName, r.PartySize, r.Date, r.Time,
	)
}

func inquiryConfirmation(i *model.Inquiry) string {
	return fmt.Sprintf(
		"Thank you, %s! I've recorded your information and our team will contact you within 24 hours. Have a great day!",
		i.CustomerName,
	)
}
