// Package agent provides the concrete workers a team schedules: local
// DynoAgents, ToolAgents bound to an LLM configuration, and RemoteAgents
// that drive a terminal agent through agentapi.
package agent

import "github.com/tuannvm/dynoteam/internal/team"

// Verify every agent kind satisfies the scheduler's capability at compile time
var (
	_ team.Agent  = (*DynoAgent)(nil)
	_ team.Agent  = (*ToolAgent)(nil)
	_ team.Agent  = (*RemoteAgent)(nil)
	_ team.Goaler = (*DynoAgent)(nil)
	_ team.Goaler = (*RemoteAgent)(nil)
)

// Kind names an agent implementation in team files.
type Kind string

const (
	KindDyno   Kind = "dyno"
	KindTool   Kind = "tool"
	KindRemote Kind = "remote"
)

// Kinds lists the supported kinds.
var Kinds = []Kind{KindDyno, KindTool, KindRemote}

// IsValidKind reports whether k names a supported kind. Empty means dyno.
func IsValidKind(k string) bool {
	if k == "" {
		return true
	}
	for _, v := range Kinds {
		if string(v) == k {
			return true
		}
	}
	return false
}
