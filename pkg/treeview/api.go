package treeview

import (
	"github.com/recera/famtree/pkg/family"
	"github.com/recera/famtree/pkg/search"
)

// API is the part of a tree display the rest of the app drives.
type API interface {
	SetMainPerson(id family.ID)
	Update(opts UpdateOptions)
}

// Focus returns a select callback that re-centers api on the chosen person.
func Focus(api API) search.SelectFunc {
	return func(id family.ID, animate bool) {
		api.SetMainPerson(id)
		api.Update(UpdateOptions{Initial: animate})
	}
}
