package chain

import "github.com/ZilDuck/stacks-asset-marketplace/internal/entity"

// journal is the per-call transaction log. Undo functions run in reverse
// order on rollback; actions are only published after a commit.
type journal struct {
	undo    []func()
	actions []entity.NftAction
}

func (j *journal) OnRollback(undo func()) {
	j.undo = append(j.undo, undo)
}

func (j *journal) Record(action entity.NftAction) {
	j.actions = append(j.actions, action)
}

func (j *journal) rollback() {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	j.undo = nil
	j.actions = nil
}
