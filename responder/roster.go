package responder

// The fixed cast of simulated peers.
var roster = []string{
	"Alice", "Bob", "Charlie", "Diana", "Eve", "Frank", "Grace", "Henry",
}

var phrases = []string{
	"That's interesting!",
	"I agree with you on that",
	"Great point!",
	"Thanks for sharing",
	"LOL 😂",
	"What do you think about that?",
	"I see what you mean",
	"That makes sense",
	"Cool! Tell me more",
	"Absolutely!",
	"Nice one!",
	"Totally agree",
	"Good question",
	"That's awesome!",
	"Makes perfect sense",
}

// Roster returns the simulated usernames.
func Roster() []string {
	return append([]string(nil), roster...)
}

// Phrases returns the fixed reply phrase set.
func Phrases() []string {
	return append([]string(nil), phrases...)
}
