package archive

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/s0up4200/beeperdesk/beeper"
)

const maxTitleLen = 48

// sanitizeFilename lowercases s and collapses anything outside [a-z0-9]
// into single dashes.
func sanitizeFilename(s string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}

	result := strings.Trim(b.String(), "-")
	if result == "" {
		return "chat"
	}
	return result
}

// chatIdentifier is a short readable slug of the chat ID plus a hash that
// keeps chats with similar IDs apart.
func chatIdentifier(chat beeper.Chat) string {
	slug := sanitizeFilename(chat.ID)
	if len(slug) > 16 {
		slug = strings.Trim(slug[:16], "-")
	}
	if slug == "" {
		slug = "chat"
	}

	sum := sha1.Sum([]byte(chat.ID))
	return fmt.Sprintf("%s-%s", slug, hex.EncodeToString(sum[:])[:6])
}

func chatTitleSlug(chat beeper.Chat) string {
	title := sanitizeFilename(chat.Title)
	if len(title) > maxTitleLen {
		title = strings.Trim(title[:maxTitleLen], "-")
	}
	return title
}

// chatDir returns the directory for chat relative to the archive root:
// <network>/<title>_<identifier>
func chatDir(chat beeper.Chat) string {
	return filepath.Join(
		sanitizeFilename(chat.Network),
		fmt.Sprintf("%s_%s", chatTitleSlug(chat), chatIdentifier(chat)),
	)
}

// baseName is the file name shared by every export of chat, without extension
func baseName(chat beeper.Chat) string {
	return fmt.Sprintf("%s_%s_messages", chatTitleSlug(chat), chatIdentifier(chat))
}
