package profiles

type Repo interface {
	Upsert(profile *Profile) error
	Delete(profileID string) error
	Get(profileID string) (*Profile, error)
	GetByEmail(email string) (*Profile, error)
	List(offset, limit int) ([]*Profile, error)
}
