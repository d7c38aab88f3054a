package guard

// defaultBlockedWords: 아동용 대화에서 허용하지 않는 단어 목록입니다.
// 단어 경계로만 매칭되므로 "classic" 같은 단어는 "ass" 로 걸리지 않습니다.
var defaultBlockedWords = []string{
	"ass",
	"asshole",
	"bastard",
	"bitch",
	"bullshit",
	"cocaine",
	"crap",
	"damn",
	"dick",
	"dumbass",
	"fuck",
	"fucking",
	"heroin",
	"kill yourself",
	"motherfucker",
	"naked",
	"nude",
	"piss",
	"porn",
	"pussy",
	"sex",
	"sexy",
	"shit",
	"slut",
	"suicide",
	"whore",
}

// DefaultBlockedWords 는 내장 금칙어 목록의 복사본을 반환한다.
func DefaultBlockedWords() []string {
	return append([]string(nil), defaultBlockedWords...)
}
