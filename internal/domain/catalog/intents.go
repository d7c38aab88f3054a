package catalog

import "slices"

// 게임 추천 요청으로 보는 문구. 소문자 부분 문자열로 비교한다.
var defaultIntentPhrases = []string{
	// en
	"recommend a game",
	"recommend me a game",
	"recommend some games",
	"suggest a game",
	"what game should i play",
	"what should i play",
	"which game should i play",
	"game recommendation",
	// es
	"recomiéndame un juego",
	"recomienda un juego",
	"qué juego debo jugar",
	"que juego debo jugar",
	// fr
	"recommande-moi un jeu",
	"recommande un jeu",
	"à quel jeu jouer",
	"quel jeu choisir",
	// ru
	"посоветуй игру",
	"порекомендуй игру",
	"во что поиграть",
	"какую игру выбрать",
	// de
	"empfiehl mir ein spiel",
	"spiel empfehlen",
	"welches spiel soll ich spielen",
}

// DefaultIntentPhrases: 기본 추천 의도 문구 사본을 반환합니다.
func DefaultIntentPhrases() []string {
	return slices.Clone(defaultIntentPhrases)
}
