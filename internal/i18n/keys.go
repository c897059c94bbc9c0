package i18n

const (
	KeyTitle             = "title"
	KeyGameMode          = "gameMode"
	KeySimple            = "simple"
	KeyBestOf3           = "bestOf3"
	KeyBestOf5           = "bestOf5"
	KeyPlayerX           = "playerX"
	KeyPlayerO           = "playerO"
	KeyCurrentPlayerTurn = "currentPlayerTurn"
	KeyWinner            = "winner"
	KeyDraw              = "draw"
	KeyResetGame         = "resetGame"
	KeyResetScore        = "resetScore"
	KeySupportDev        = "supportDev"
	KeyGithubSponsors    = "githubSponsors"
	KeyGameWon           = "gameWon"
	KeySeriesWon         = "seriesWon"
	KeyStartingNewGame   = "startingNewGame"
	KeySeconds           = "seconds"
	KeyViewCode          = "viewCode"
)

// RequiredKeys must be present in every language of a catalog.
var RequiredKeys = []string{
	KeyTitle,
	KeyGameMode,
	KeySimple,
	KeyBestOf3,
	KeyBestOf5,
	KeyPlayerX,
	KeyPlayerO,
	KeyCurrentPlayerTurn,
	KeyWinner,
	KeyDraw,
	KeyResetGame,
	KeyResetScore,
	KeySupportDev,
	KeyGithubSponsors,
	KeyGameWon,
	KeySeriesWon,
	KeyStartingNewGame,
	KeySeconds,
}

// FallbackLanguage is the only language of the built-in catalog.
const FallbackLanguage = "pt"

// fallbackCatalog is served when no catalog can be loaded.
func fallbackCatalog() Translations {
	return Translations{
		FallbackLanguage: {
			KeyTitle:             "Jogo da Velha",
			KeyCurrentPlayerTurn: "Vez do jogador",
			KeyPlayerX:           "Jogador X",
			KeyPlayerO:           "Jogador O",
			KeyWinner:            "Vencedor:",
			KeyDraw:              "Empate!",
			KeyGameWon:           "ganhou o jogo!",
			KeyStartingNewGame:   "Iniciando novo jogo em",
			KeySeconds:           "segundos",
		},
	}
}

// builtinTexts back up any key a loaded language leaves out.
var builtinTexts = fallbackCatalog()[FallbackLanguage]

// labelDefaults fill interface labels a language does not define.
var labelDefaults = map[string]string{
	KeyTitle:          "Jogo da Velha",
	KeyGameMode:       "Modo de Jogo:",
	KeySimple:         "Simples",
	KeyBestOf3:        "Melhor de 3",
	KeyBestOf5:        "Melhor de 5",
	KeyPlayerX:        "Jogador X",
	KeyPlayerO:        "Jogador O",
	KeyResetGame:      "Reiniciar Jogo",
	KeyResetScore:     "Zerar Placar",
	KeySupportDev:     "Apoie o desenvolvimento:",
	KeyGithubSponsors: "GitHub Sponsors",
	KeyViewCode:       "Ver código no GitHub",
}

var htmlTags = map[string]string{
	"pt": "pt-BR",
	"en": "en-US",
	"es": "es-ES",
}
