package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/tictactoe-match/internal/i18n"
)

type languageResponse struct {
	Language string            `json:"language"`
	LangTag  string            `json:"lang_tag"`
	Texts    map[string]string `json:"texts"`
}

func (that *Server) handleTranslations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"default":      that.catalog.DefaultLanguage(),
		"languages":    that.catalog.Languages(),
		"translations": that.catalog.All(),
	})
}

func (that *Server) handleLanguage(c *gin.Context) {
	lang := c.Param("lang")

	texts, err := that.catalog.Language(lang)
	if err != nil {
		that.logger.Debug("unknown language requested", "language", lang)
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, languageResponse{
		Language: lang,
		LangTag:  i18n.HTMLTag(lang),
		Texts:    texts,
	})
}
