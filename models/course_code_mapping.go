package models

// CourseCodeMapping ties a padded course key such as "ENT(017)" to the display
// name every spelling of that course is folded into.
type CourseCodeMapping struct {
	CourseKey     string `json:"course_key" yaml:"course_key"`
	CanonicalName string `json:"canonical_name" yaml:"canonical_name"`
}

// DefaultCourseCodeMappings are the spelling variants seen in published allotment lists.
var DefaultCourseCodeMappings = []CourseCodeMapping{
	{CourseKey: "ENT(017)", CanonicalName: "ENT (017) - MS(ENT)"},
	{CourseKey: "PM(004)", CanonicalName: "PM (004) - MD(PULMONARY MEDICINE)"},
	{CourseKey: "SPM(030)", CanonicalName: "SPM (030) - MD(SPM)"},
	{CourseKey: "TM(036)", CanonicalName: "TM (036) - MD(TRANSFUSION MEDICINE)"},
	{CourseKey: "RT(033)", CanonicalName: "RT (033) - MD(RADIO THERAPY)"},
}
