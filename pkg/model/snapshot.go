package model

// FormValues holds the in-progress value of every field.
type FormValues struct {
	FirstName    string
	LastName     string
	Email        string
	Subscription SubscriptionTier
	Password     string
	CsvFile      FileHandle
}

// DefaultFormValues returns the values of a fresh form.
func DefaultFormValues() FormValues {
	return FormValues{Subscription: DefaultSubscriptionTier}
}

// Value returns the value a validation rule sees for field. The file field
// yields nil when no file is bound.
func (v FormValues) Value(field FieldName) any {
	switch field {
	case FieldFirstName:
		return v.FirstName
	case FieldLastName:
		return v.LastName
	case FieldEmail:
		return v.Email
	case FieldSubscription:
		return string(v.Subscription)
	case FieldPassword:
		return v.Password
	case FieldCsvFile:
		if v.CsvFile == nil {
			return nil
		}
		return v.CsvFile
	default:
		return nil
	}
}

// FormSnapshot is the frozen, validated data handed to the results view.
type FormSnapshot struct {
	FirstName    string           `json:"firstName"`
	LastName     string           `json:"lastName"`
	Email        string           `json:"email"`
	Subscription SubscriptionTier `json:"subscription"`
	Password     string           `json:"password"`
	CsvRows      []CsvRow         `json:"csvData"`
	CsvFile      FileHandle       `json:"-"`
}

// Snapshot freezes the values together with the ingested rows.
func (v FormValues) Snapshot(rows []CsvRow) FormSnapshot {
	return FormSnapshot{
		FirstName:    v.FirstName,
		LastName:     v.LastName,
		Email:        v.Email,
		Subscription: v.Subscription,
		Password:     v.Password,
		CsvRows:      CloneRows(rows),
		CsvFile:      v.CsvFile,
	}
}

// Clone returns a copy that shares no mutable slices with s.
func (s FormSnapshot) Clone() FormSnapshot {
	out := s
	out.CsvRows = CloneRows(s.CsvRows)
	return out
}

// FileName returns the bound file's name or "".
func (s FormSnapshot) FileName() string {
	if s.CsvFile == nil {
		return ""
	}
	return s.CsvFile.Name()
}
