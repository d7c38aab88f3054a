package voice

import (
	"regexp"
	"strings"

	"github.com/forPelevin/gomoji"
)

var (
	boldStars       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	boldUnderscores = regexp.MustCompile(`__(.+?)__`)
	italicStar      = regexp.MustCompile(`\*([^*\n]+)\*`)
	italicUndersc   = regexp.MustCompile(`\b_([^_\n]+)_\b`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// 학습 화면에서 자주 쓰는 이모지. gomoji 데이터에 없는 조합도 확실히 지운다.
var fixedEmoji = strings.NewReplacer(
	"🎮", "", "🧠", "", "⭐", "", "🌟", "", "✨", "", "🎉", "", "🎨", "", "📚", "",
	"🚀", "", "🌈", "", "😊", "", "😄", "", "👍", "", "💡", "", "🎵", "", "❤️", "",
)

// Sanitize: 마크다운 강조, 이모지, 줄바꿈을 제거해 음성 합성용 문장으로 만듭니다.
func Sanitize(text string) string {
	out := boldStars.ReplaceAllString(text, "$1")
	out = boldUnderscores.ReplaceAllString(out, "$1")
	out = italicStar.ReplaceAllString(out, "$1")
	out = italicUndersc.ReplaceAllString(out, "$1")
	out = fixedEmoji.Replace(out)
	out = gomoji.RemoveEmojis(out)
	out = whitespaceRun.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}
