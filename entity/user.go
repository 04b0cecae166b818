package entity

import "go.mongodb.org/mongo-driver/bson/primitive"

type Role string

const (
	RoleUser       Role = "User"
	RoleTeamLeader Role = "Team Leader"
	RoleSuperadmin Role = "Superadmin"
)

// DefaultCollege is assigned when signup omits the college field.
const DefaultCollege = "MMMUT"

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleTeamLeader, RoleSuperadmin:
		return Role(s), true
	}

	return "", false
}

type User struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name             string              `bson:"name" json:"name"`
	Email            string              `bson:"email" json:"email"`
	Password         string              `bson:"password" json:"-"`
	Phone            string              `bson:"phone" json:"phone"`
	Role             Role                `bson:"role" json:"role"`
	TeamID           *primitive.ObjectID `bson:"team_id,omitempty" json:"teamId,omitempty"`
	College          string              `bson:"college" json:"college"`
	UniversityRollNo string              `bson:"university_roll_no,omitempty" json:"universityRollNo"`
	CodeforceHandle  string              `bson:"codeforce_handle" json:"codeforceHandle"`
}
