package domain

import (
	"github.com/yungbote/agencycrm-backend/internal/domain/catalog"
	"github.com/yungbote/agencycrm-backend/internal/domain/crm"
	"github.com/yungbote/agencycrm-backend/internal/domain/org"
)

type Organization = org.Organization
type User = org.User
type UserToken = org.UserToken
type Caller = org.Caller
type Role = org.Role

const (
	RoleAdmin = org.RoleAdmin
	RoleAgent = org.RoleAgent
)

type Contact = crm.Contact
type Property = crm.Property
type Transaction = crm.Transaction
type Deal = crm.Deal
type Task = crm.Task
type Event = crm.Event
type CalendarDate = crm.CalendarDate

type TransactionType = catalog.TransactionType
type TransactionStatus = catalog.TransactionStatus
type DateDefinition = catalog.DateDefinition
