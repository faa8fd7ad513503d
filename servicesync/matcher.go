package servicesync

import (
	"strings"

	"bitbucket.org/mmdatafocus/service_sync/models"
	"bitbucket.org/mmdatafocus/service_sync/utils"
)

// KeyFunc turns a raw mobile number into the key used for matching.
type KeyFunc func(mobileNumber string) string

// ExactKey matches mobile numbers byte for byte.
func ExactKey(mobileNumber string) string {
	return mobileNumber
}

// PhoneKey normalises mobile numbers to E.164 for region before matching.
func PhoneKey(region string) KeyFunc {
	return func(mobileNumber string) string {
		return utils.NormalizePhoneNumber(mobileNumber, region)
	}
}

// Matcher finds the local service for an upstream record by natural key.
// When several local services share a key, the first one in pool order wins.
type Matcher struct {
	key   KeyFunc
	index map[string]*models.Service
}

func NewMatcher(pool []models.Service, key KeyFunc) *Matcher {
	if key == nil {
		key = ExactKey
	}
	m := &Matcher{
		key:   key,
		index: make(map[string]*models.Service, len(pool)),
	}
	for i := range pool {
		k := key(pool[i].MobileNumber)
		if strings.TrimSpace(k) == "" {
			continue
		}
		if _, exists := m.index[k]; exists {
			continue
		}
		m.index[k] = &pool[i]
	}
	return m
}

func (m *Matcher) Find(src SourceService) (*models.Service, bool) {
	k := m.key(src.MobileNumber)
	if strings.TrimSpace(k) == "" {
		return nil, false
	}
	svc, ok := m.index[k]
	return svc, ok
}
