package repofake

import (
	"context"
	"sync"

	"github.com/imshq/go-ims-server/policies"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ policies.Repo = (*FakePolicyRepo)(nil)

type FakePolicyRepo struct {
	policies map[primitive.ObjectID]*policies.AccessPolicy
	lock     sync.RWMutex
}

func NewFakePolicyRepo() *FakePolicyRepo {
	return &FakePolicyRepo{
		policies: make(map[primitive.ObjectID]*policies.AccessPolicy),
	}
}

func (pr *FakePolicyRepo) Upsert(_ context.Context, policy *policies.AccessPolicy) error {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	if policy.ID.IsZero() {
		policy.ID = primitive.NewObjectID()
	}
	copied := *policy
	pr.policies[policy.ID] = &copied
	return nil
}

func (pr *FakePolicyRepo) GetForUser(_ context.Context, userID primitive.ObjectID, organisationID *primitive.ObjectID) (*policies.AccessPolicy, error) {
	pr.lock.RLock()
	defer pr.lock.RUnlock()

	for _, policy := range pr.policies {
		if policy.InvitedUserID != userID {
			continue
		}
		if !sameOrganisation(policy.OrganisationID, organisationID) {
			continue
		}
		copied := *policy
		return &copied, nil
	}
	return nil, policies.ErrNotFound
}

func sameOrganisation(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
