package filter

import (
	"slices"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/beeperdesk/beeper"
)

// addHelperFunctions adds the chat-independent helpers to env
func addHelperFunctions(env map[string]any) {
	// Date helpers
	env["daysSince"] = func(t time.Time) int {
		if t.IsZero() {
			return -1
		}
		return int(time.Since(t).Hours() / 24)
	}
	env["daysAgo"] = func(days int) time.Time {
		return time.Now().AddDate(0, 0, -days)
	}
	env["monthsAgo"] = func(months int) time.Time {
		return time.Now().AddDate(0, -months, 0)
	}
	env["parseDate"] = func(dateStr string) time.Time {
		t, _ := time.Parse("2006-01-02", dateStr)
		return t
	}
	// String helpers
	env["contains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["startsWith"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["lower"] = strings.ToLower
	env["now"] = time.Now
}

// chatEnvironment builds the evaluation environment for one chat.
// Compilation uses the environment of a zero chat, so every name here is
// type-checked up front.
func chatEnvironment(chat beeper.Chat) map[string]any {
	env := make(map[string]any, 32)
	addHelperFunctions(env)

	names := participantNames(chat.Participants.Items)

	env["Chat"] = chat
	env["ID"] = chat.ID
	env["Title"] = chat.Title
	env["Network"] = chat.Network
	env["AccountID"] = chat.AccountID
	env["Type"] = chat.Type
	env["UnreadCount"] = chat.UnreadCount
	env["IsArchived"] = deref(chat.IsArchived)
	env["IsMuted"] = deref(chat.IsMuted)
	env["IsPinned"] = deref(chat.IsPinned)
	env["LastActivity"] = deref(chat.LastActivity)
	env["Participants"] = names
	env["ParticipantCount"] = max(chat.Participants.Total, len(chat.Participants.Items))

	env["isGroup"] = func() bool { return chat.Type == "group" }
	env["isDirect"] = func() bool { return chat.Type == "single" }
	env["hasParticipant"] = func(name string) bool {
		return slices.ContainsFunc(names, func(n string) bool {
			return strings.EqualFold(n, name)
		})
	}
	env["inactiveDays"] = func() int {
		if chat.LastActivity == nil {
			return -1
		}
		return int(time.Since(*chat.LastActivity).Hours() / 24)
	}

	return env
}

func participantNames(users []beeper.User) []string {
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.DisplayName())
	}
	return names
}

func deref[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

// compileEnvironment returns the environment expressions are checked against
func compileEnvironment() map[string]any {
	return chatEnvironment(beeper.Chat{})
}

func compileProgram(expression string) (*vm.Program, error) {
	return expr.Compile(expression,
		expr.Env(compileEnvironment()),
		expr.AsBool(),
	)
}
