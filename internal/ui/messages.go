package ui

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys shown to players. Each key is registered with x/text so a
// second locale only needs another table. Numbers are passed pre-formatted
// as %s; the printer would otherwise group the digits of ids and
// generations.
const (
	MsgLegend        = "hud.legend"
	MsgSummary       = "hud.summary"
	MsgGodDiag       = "hud.god"
	MsgStable        = "hud.stable"
	MsgBoardTitle    = "board.title"
	MsgBoardRow      = "board.row"
	MsgBoardMoving   = "board.moving"
	MsgCue           = "hud.cue"
	MsgCueGod        = "hud.cue.god"
	MsgCuePrompt     = "hud.cue.prompt"
	MsgJoinNoSpace   = "join.nospace"
	MsgInternal      = "error.internal"
	MsgRespawnAsk    = "respawn.confirm"
	MsgResetAsk      = "reset.confirm"
	MsgRespawnOK     = "respawn.ok"
	MsgRespawnCancel = "respawn.cancel"
	MsgRespawnWait   = "respawn.cooldown"
	MsgRespawnSpace  = "respawn.nospace"
	MsgGodPassword   = "god.password"
	MsgGodDenied     = "god.denied"
	MsgGodOn         = "god.on"
	MsgGodExitAsk    = "god.exit.confirm"
	MsgGodOff        = "god.off"
	MsgGodStay       = "god.stay"
	MsgGodDisabled   = "god.disabled"
	MsgRestartAsk    = "restart.confirm"
	MsgRestartOK     = "restart.ok"
	MsgRestartPart   = "restart.partial"
	MsgRestartCancel = "restart.cancel"
	MsgReloadAsk     = "reload.confirm"
	MsgReloadOK      = "reload.ok"
	MsgReloadFailed  = "reload.failed"
	MsgReloadCancel  = "reload.cancel"
	MsgRoundWon      = "round.won"
	MsgRoundNone     = "round.none"
)

var english = map[string]string{
	MsgLegend:        "%c you   %c other players   %c cells",
	MsgSummary:       "Generation %s/%s   Round %s   Players %s",
	MsgGodDiag:       "[god] live cells %s%s   x restart board   l reload engine",
	MsgStable:        "   (stable)",
	MsgBoardTitle:    "Leaders",
	MsgBoardMoving:   "   (respawning)",
	MsgBoardRow:      "%s %s. player %s   %s cells   %s gens in lead   %s wins%s",
	MsgCue:           "r respawn   g god mode   q quit > ",
	MsgCueGod:        "r reset board   x restart   l reload   g leave god mode   q quit > ",
	MsgCuePrompt:     "> ",
	MsgJoinNoSpace:   "The board is full, try again later.",
	MsgInternal:      "Something went wrong, please try again.",
	MsgRespawnAsk:    "Respawn near your last position? (y/n)",
	MsgResetAsk:      "Reset the board for everyone and clear all wins? (y/n)",
	MsgRespawnOK:     "Respawned.",
	MsgRespawnCancel: "Respawn cancelled.",
	MsgRespawnWait:   "Respawn available in %s s.",
	MsgRespawnSpace:  "No free space near you, try again later.",
	MsgGodPassword:   "God mode passphrase: %s",
	MsgGodDenied:     "Wrong passphrase.",
	MsgGodOn:         "God mode enabled.",
	MsgGodExitAsk:    "Leave god mode? (y/n)",
	MsgGodOff:        "God mode disabled.",
	MsgGodStay:       "Still in god mode.",
	MsgGodDisabled:   "God mode is not available on this server.",
	MsgRestartAsk:    "Restart the board for everyone? (y/n)",
	MsgRestartOK:     "Board restarted.",
	MsgRestartPart:   "Board restarted, %s players could not be placed.",
	MsgRestartCancel: "Restart cancelled.",
	MsgReloadAsk:     "Reload the simulation engine? (y/n)",
	MsgReloadOK:      "Engine reloaded.",
	MsgReloadFailed:  "Engine reload failed.",
	MsgReloadCancel:  "Reload cancelled.",
	MsgRoundWon:      "Round %s won by player %s.",
	MsgRoundNone:     "Round %s ended without a winner.",
}

func init() {
	for key, msg := range english {
		if err := message.SetString(language.English, key, msg); err != nil {
			panic(err)
		}
	}
}

// NewPrinter returns a printer for the given BCP 47 tag, falling back to
// English for tags that fail to parse.
func NewPrinter(tag string) *message.Printer {
	t, err := language.Parse(tag)
	if err != nil {
		t = language.English
	}
	return message.NewPrinter(t)
}
