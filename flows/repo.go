package flows

type Repo interface {
	Upsert(flow *Flow) error
	Delete(flowID string) error
	Get(flowID string) (*Flow, error)
	List(offset, limit int) ([]*Flow, error)
}
