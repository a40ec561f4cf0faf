package server

import (
	"net/http"
	"os"
	"strings"

	"growth_engine/dto"
	"growth_engine/shared"
)

const versionFileName = "version.txt"

type healthHandlerGroup struct {
	logger  shared.ILogger
	version string
}

func NewHealthHandlerGroup(logger shared.ILogger) IHandlerGroup {
	versionBytes, _ := os.ReadFile(versionFileName)
	version := strings.TrimSpace(string(versionBytes))
	if version == "" {
		version = "dev"
	}
	return &healthHandlerGroup{logger: logger, version: version}
}

func (hg *healthHandlerGroup) Prefix() string {
	return "/"
}

func (hg *healthHandlerGroup) GroupDefs() []handlerDef {
	return []handlerDef{
		{"GET", "/health", func(w http.ResponseWriter, r *http.Request) { hg.getHealth(w, r) }},
	}
}

func (hg *healthHandlerGroup) AuthMW() func(next http.Handler) http.Handler {
	return emptyMW
}

func (hg *healthHandlerGroup) getHealth(w http.ResponseWriter, _ *http.Request) {
	writeJsonResponse(hg.logger, w, dto.Health{Status: "ok", Version: hg.version})
}
