package models

// AdmissionStatus is the structured form of an admission detail token such as
// "NS-SC-FEM-PHO-R2".
type AdmissionStatus struct {
	AdmissionType    string `json:"admissionType"`
	Phase            string `json:"phase"`
	AllottedCategory string `json:"allottedCategory"`
	Gender           Gender `json:"gender"`
	IsPH             bool   `json:"isPH"`
	IsMIN            bool   `json:"isMIN"`
	IsMRC            bool   `json:"isMRC"`
	IsLocal          bool   `json:"isLocal"`
}

// DefaultAdmissionStatus is what an empty or unreadable token decodes to.
func DefaultAdmissionStatus() AdmissionStatus {
	return AdmissionStatus{
		AllottedCategory: CategoryOpen,
		Gender:           Male,
	}
}
