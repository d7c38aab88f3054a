package assistant

// 고정 응답 문구. 상위 서비스 상태와 관계없이 항상 같은 값을 반환한다.
const (
	// NoTokenMessage 는 채팅 토큰이 설정되지 않았을 때의 응답이다.
	NoTokenMessage = "Hi! I'm Neura, your learning buddy. My thinking cap isn't connected right now, but I'll be ready to chat very soon. In the meantime, why not try one of the games?"
	// RedirectMessage 는 금칙어가 감지되었을 때의 응답이다.
	RedirectMessage = "Let's keep our words kind! How about we learn something fun instead? You could ask me about space, animals, or one of the NeuraPlay games."
	// TryAgainMessage 는 채팅 제공자 호출이 실패했을 때의 응답이다.
	TryAgainMessage = "Oops, my brain needs a tiny rest! Please try again in a moment."
	// SafeFallbackMessage 는 안전 분류기가 unsafe 로 판정했을 때의 응답이다.
	SafeFallbackMessage = "That's a great question! Let's explore something fun and educational together instead. Would you like to hear a fun fact or play a learning game?"
)
