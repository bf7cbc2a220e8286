package chat

import (
	"math/rand"
	"strings"
)

// fallbackReplies are the canned companion responses served when the
// completion API is in a degraded state (quota or rate-limit errors).
var fallbackReplies = []string{
	"Hello! I'm your AI companion. I'm here to chat and help you with whatever's on your mind. How are you feeling today?",
	"That's interesting! I'd love to hear more about that. What's been on your mind lately?",
	"I'm doing well, thank you for asking! I'm here to support you and have meaningful conversations. What would you like to talk about?",
	"I appreciate you reaching out! I'm your AI companion and I'm here to listen, chat, and help you however I can. What's new with you?",
	"That's a great question! I'm your AI companion designed to be supportive and engaging. I'm here to chat about anything you'd like to discuss.",
	"Hi there! I'm so glad you're here. I'm your AI companion and I'm ready to have a wonderful conversation with you. What's on your mind?",
	"I'm here and ready to chat! As your AI companion, I'm designed to be caring, supportive, and engaging. What would you like to talk about today?",
	"Hello! I'm your AI companion and I'm excited to chat with you. I'm here to listen, support, and engage in meaningful conversations. How are you doing?",
}

// IsQuotaError reports whether a completion failure should degrade to a
// canned reply instead of surfacing an error. Matches the provider's quota
// and rate-limit signatures.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "quota") || strings.Contains(msg, "429")
}

// FallbackReply picks a canned response by simple keyword matching on the
// user's message. Unmatched messages get a random pick from the fixed set.
func FallbackReply(userMessage string) string {
	lower := strings.ToLower(userMessage)
	switch {
	case strings.Contains(lower, "hello") || strings.Contains(lower, "hi"):
		return fallbackReplies[0]
	case strings.Contains(lower, "how are you"):
		return fallbackReplies[2]
	case strings.Contains(lower, "what") || strings.Contains(lower, "who"):
		return fallbackReplies[4]
	default:
		return fallbackReplies[rand.Intn(len(fallbackReplies))]
	}
}
