// Package mo contains payload types for the OS2mo service API. Only the
// fields the upload clients need are modeled; MO tolerates omitted
// optional fields.
package mo

import "github.com/google/uuid"

// Model kinds, used to route payloads to their service endpoints.
const (
	KindAddress          = "address"
	KindAssociation      = "association"
	KindEmployee         = "employee"
	KindEngagement       = "engagement"
	KindFacetClass       = "facet_class"
	KindITUser           = "it"
	KindKLE              = "kle"
	KindLeave            = "leave"
	KindManager          = "manager"
	KindOrganisationUnit = "org_unit"
	KindRole             = "role"
)

// Ref points at another MO object by UUID, the shape MO expects for
// relation fields.
type Ref struct {
	UUID uuid.UUID `json:"uuid"`
}

// Validity is a half-open date range in MO's YYYY-MM-DD convention. An
// empty To means "until further notice".
type Validity struct {
	From string `json:"from"`
	To   string `json:"to,omitempty"`
}

// Employee is a person registered in MO.
type Employee struct {
	ID        uuid.UUID `json:"uuid,omitempty"`
	GivenName string    `json:"givenname"`
	Surname   string    `json:"surname"`
	CPRNo     string    `json:"cpr_no,omitempty"`
}

func (e Employee) Kind() string    { return KindEmployee }
func (e Employee) UUID() uuid.UUID { return e.ID }

// OrganisationUnit is a node in the organisation tree.
type OrganisationUnit struct {
	ID       uuid.UUID `json:"uuid,omitempty"`
	Name     string    `json:"name"`
	Parent   *Ref      `json:"parent,omitempty"`
	UnitType *Ref      `json:"org_unit_type,omitempty"`
	Validity Validity  `json:"validity"`
}

func (o OrganisationUnit) Kind() string    { return KindOrganisationUnit }
func (o OrganisationUnit) UUID() uuid.UUID { return o.ID }

// Engagement ties a person to an organisation unit with a job function.
type Engagement struct {
	ID             uuid.UUID `json:"uuid,omitempty"`
	Type           string    `json:"type"`
	Person         Ref       `json:"person"`
	OrgUnit        Ref       `json:"org_unit"`
	JobFunction    *Ref      `json:"job_function,omitempty"`
	EngagementType *Ref      `json:"engagement_type,omitempty"`
	Validity       Validity  `json:"validity"`
}

func (e Engagement) Kind() string    { return KindEngagement }
func (e Engagement) UUID() uuid.UUID { return e.ID }

// Address is a typed address detail on a person or unit.
type Address struct {
	ID          uuid.UUID `json:"uuid,omitempty"`
	Type        string    `json:"type"`
	Value       string    `json:"value"`
	AddressType Ref       `json:"address_type"`
	Person      *Ref      `json:"person,omitempty"`
	OrgUnit     *Ref      `json:"org_unit,omitempty"`
	Validity    Validity  `json:"validity"`
}

func (a Address) Kind() string    { return KindAddress }
func (a Address) UUID() uuid.UUID { return a.ID }

// Manager marks a person as manager of an organisation unit.
type Manager struct {
	ID           uuid.UUID `json:"uuid,omitempty"`
	Type         string    `json:"type"`
	Person       Ref       `json:"person"`
	OrgUnit      Ref       `json:"org_unit"`
	ManagerType  *Ref      `json:"manager_type,omitempty"`
	ManagerLevel *Ref      `json:"manager_level,omitempty"`
	Validity     Validity  `json:"validity"`
}

func (m Manager) Kind() string    { return KindManager }
func (m Manager) UUID() uuid.UUID { return m.ID }

// ITUser is an account in an external IT system.
type ITUser struct {
	ID       uuid.UUID `json:"uuid,omitempty"`
	Type     string    `json:"type"`
	UserKey  string    `json:"user_key"`
	ITSystem Ref       `json:"itsystem"`
	Person   *Ref      `json:"person,omitempty"`
	Validity Validity  `json:"validity"`
}

func (u ITUser) Kind() string    { return KindITUser }
func (u ITUser) UUID() uuid.UUID { return u.ID }

// KLE attaches municipal task numbers to an organisation unit.
type KLE struct {
	ID        uuid.UUID `json:"uuid,omitempty"`
	Type      string    `json:"type"`
	KLEAspect []Ref     `json:"kle_aspect"`
	KLENumber Ref       `json:"kle_number"`
	OrgUnit   Ref       `json:"org_unit"`
	Validity  Validity  `json:"validity"`
}

func (k KLE) Kind() string    { return KindKLE }
func (k KLE) UUID() uuid.UUID { return k.ID }

// Leave records an absence tied to an engagement.
type Leave struct {
	ID         uuid.UUID `json:"uuid,omitempty"`
	Type       string    `json:"type"`
	Person     Ref       `json:"person"`
	LeaveType  Ref       `json:"leave_type"`
	Engagement *Ref      `json:"engagement,omitempty"`
	Validity   Validity  `json:"validity"`
}

func (l Leave) Kind() string    { return KindLeave }
func (l Leave) UUID() uuid.UUID { return l.ID }

// Role ties a person to an organisation unit in a named role.
type Role struct {
	ID       uuid.UUID `json:"uuid,omitempty"`
	Type     string    `json:"type"`
	Person   Ref       `json:"person"`
	OrgUnit  Ref       `json:"org_unit"`
	RoleType *Ref      `json:"role_type,omitempty"`
	Validity Validity  `json:"validity"`
}

func (r Role) Kind() string    { return KindRole }
func (r Role) UUID() uuid.UUID { return r.ID }

// Association is a looser person/unit connection than an engagement.
type Association struct {
	ID              uuid.UUID `json:"uuid,omitempty"`
	Type            string    `json:"type"`
	Person          Ref       `json:"person"`
	OrgUnit         Ref       `json:"org_unit"`
	AssociationType *Ref      `json:"association_type,omitempty"`
	Validity        Validity  `json:"validity"`
}

func (a Association) Kind() string    { return KindAssociation }
func (a Association) UUID() uuid.UUID { return a.ID }

// FacetClass creates a class under an existing facet. The facet UUID is
// part of the endpoint path, not the payload.
type FacetClass struct {
	ID        uuid.UUID `json:"uuid,omitempty"`
	FacetUUID uuid.UUID `json:"-"`
	Name      string    `json:"name"`
	UserKey   string    `json:"user_key,omitempty"`
	Scope     string    `json:"scope,omitempty"`
}

func (f FacetClass) Kind() string    { return KindFacetClass }
func (f FacetClass) UUID() uuid.UUID { return f.ID }

// PathVars exposes the facet UUID for endpoint path templating.
func (f FacetClass) PathVars() map[string]string {
	return map[string]string{"facet_uuid": f.FacetUUID.String()}
}

// NewEngagement returns an Engagement with its type discriminator set.
func NewEngagement(person, orgUnit Ref, validity Validity) Engagement {
	return Engagement{Type: KindEngagement, Person: person, OrgUnit: orgUnit, Validity: validity}
}

// NewAddress returns an Address with its type discriminator set.
func NewAddress(value string, addressType Ref, validity Validity) Address {
	return Address{Type: KindAddress, Value: value, AddressType: addressType, Validity: validity}
}

// NewManager returns a Manager with its type discriminator set.
func NewManager(person, orgUnit Ref, validity Validity) Manager {
	return Manager{Type: KindManager, Person: person, OrgUnit: orgUnit, Validity: validity}
}

// NewITUser returns an ITUser with its type discriminator set.
func NewITUser(userKey string, itSystem Ref, validity Validity) ITUser {
	return ITUser{Type: KindITUser, UserKey: userKey, ITSystem: itSystem, Validity: validity}
}

// NewKLE returns a KLE with its type discriminator set.
func NewKLE(number Ref, orgUnit Ref, validity Validity) KLE {
	return KLE{Type: KindKLE, KLENumber: number, OrgUnit: orgUnit, Validity: validity}
}

// NewLeave returns a Leave with its type discriminator set.
func NewLeave(person, leaveType Ref, validity Validity) Leave {
	return Leave{Type: KindLeave, Person: person, LeaveType: leaveType, Validity: validity}
}

// NewRole returns a Role with its type discriminator set.
func NewRole(person, orgUnit Ref, validity Validity) Role {
	return Role{Type: KindRole, Person: person, OrgUnit: orgUnit, Validity: validity}
}

// NewAssociation returns an Association with its type discriminator set.
func NewAssociation(person, orgUnit Ref, validity Validity) Association {
	return Association{Type: KindAssociation, Person: person, OrgUnit: orgUnit, Validity: validity}
}
