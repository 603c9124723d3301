package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateCost(t *testing.T) {
	assert.Equal(t, 0.0, CalculateCost(0))
	assert.InDelta(t, 0.50, CalculateCost(1_000_000), 1e-9)
	assert.InDelta(t, 0.000625, CalculateCost(1250), 1e-9)
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+33612345678", NormalizePhone("whatsapp:+33612345678"))
	assert.Equal(t, "+33612345678", NormalizePhone("+33612345678"))
}

func TestWhatsAppConversationID(t *testing.T) {
	assert.Equal(t, "acme_+33612345678", WhatsAppConversationID("acme", "whatsapp:+33612345678"))
}

func TestSplitConversationID(t *testing.T) {
	store, phone := SplitConversationID("acme_+33612345678")
	assert.Equal(t, "acme", store)
	assert.Equal(t, "+33612345678", phone)

	store, phone = SplitConversationID("malformed")
	assert.Empty(t, store)
	assert.Empty(t, phone)

	store, phone = SplitConversationID("_+336")
	assert.Empty(t, store)
	assert.Empty(t, phone)
}

func TestEmailConversationID_SubjectGrouping(t *testing.T) {
	base := EmailConversationID("acme", "", "Your order")

	// Reply prefixes and casing fold into the same thread.
	assert.Equal(t, base, EmailConversationID("acme", "", "Re: Your order"))
	assert.Equal(t, base, EmailConversationID("acme", "", "RE: re: your ORDER"))
	assert.Equal(t, base, EmailConversationID("acme", "", "Fwd: Your order"))

	// Different stores never share a thread.
	assert.NotEqual(t, base, EmailConversationID("other", "", "Your order"))
}

func TestEmailConversationID_ReferencesWin(t *testing.T) {
	byRef := EmailConversationID("acme", "<root@mail.example> <mid2@mail.example>", "Anything")
	assert.Equal(t, byRef, EmailConversationID("acme", "<root@mail.example>", "Totally different subject"))
	assert.NotEqual(t, byRef, EmailConversationID("acme", "", "Anything"))
}

func TestEmailConversationID_BlankReferencesFallsBackToSubject(t *testing.T) {
	bySubject := EmailConversationID("acme", "", "Hello")
	assert.Equal(t, bySubject, EmailConversationID("acme", " ", "Hello"))
	assert.Equal(t, bySubject, EmailConversationID("acme", "\t \n", "Re: Hello"))
}
