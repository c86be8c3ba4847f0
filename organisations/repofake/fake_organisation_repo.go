package repofake

import (
	"context"
	"sync"

	"github.com/imshq/go-ims-server/organisations"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ organisations.Repo = (*FakeOrganisationRepo)(nil)

type FakeOrganisationRepo struct {
	organisations map[primitive.ObjectID]*organisations.Organisation
	lock          sync.RWMutex
}

func NewFakeOrganisationRepo() *FakeOrganisationRepo {
	return &FakeOrganisationRepo{
		organisations: make(map[primitive.ObjectID]*organisations.Organisation),
	}
}

func (or *FakeOrganisationRepo) Upsert(_ context.Context, organisation *organisations.Organisation) error {
	or.lock.Lock()
	defer or.lock.Unlock()

	if organisation.ID.IsZero() {
		organisation.ID = primitive.NewObjectID()
	}
	copied := *organisation
	or.organisations[organisation.ID] = &copied
	return nil
}

func (or *FakeOrganisationRepo) GetByID(_ context.Context, id primitive.ObjectID) (*organisations.Organisation, error) {
	or.lock.RLock()
	defer or.lock.RUnlock()

	organisation, ok := or.organisations[id]
	if !ok {
		return nil, organisations.ErrNotFound
	}
	copied := *organisation
	return &copied, nil
}
