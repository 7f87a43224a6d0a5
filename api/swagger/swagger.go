package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Nurse Assist Admin API",
        "description": "Admin backend for Nurse Assist International",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, token refresh and password management"},
        {"name": "Students", "description": "Student roster management"},
        {"name": "Courses", "description": "Course catalogue"},
        {"name": "Leads", "description": "Enquiry pipeline"},
        {"name": "Referrals", "description": "Referral partner management"},
        {"name": "Payments", "description": "Payment records"},
        {"name": "Recycle Bin", "description": "Deleted record holding area"},
        {"name": "Audit", "description": "Audit trail"},
        {"name": "Users", "description": "Privileged user administration"},
        {"name": "Dashboard", "description": "Aggregate counters"},
        {"name": "Reports", "description": "Printable exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "responses": {
                    "200": {"description": "Tokens issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "Tokens rotated"},
                    "401": {"description": "Invalid refresh token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke refresh token",
                "responses": {
                    "204": {"description": "Session closed"}
                }
            }
        },
        "/auth/change-password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Change password",
                "responses": {
                    "204": {"description": "Password changed"}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update student",
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Move student to the recycle bin",
                "responses": {"204": {"description": "Moved to recycle bin"}}
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create course",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Duplicate code"}}
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get course",
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["Courses"],
                "summary": "Update course",
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Courses"],
                "summary": "Move course to the recycle bin",
                "responses": {"204": {"description": "Moved to recycle bin"}}
            }
        },
        "/leads": {
            "get": {
                "tags": ["Leads"],
                "summary": "List leads",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Leads"],
                "summary": "Create lead",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/leads/{id}": {
            "get": {
                "tags": ["Leads"],
                "summary": "Get lead",
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["Leads"],
                "summary": "Update lead",
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Leads"],
                "summary": "Move lead to the recycle bin",
                "responses": {"204": {"description": "Moved to recycle bin"}}
            }
        },
        "/referrals": {
            "get": {
                "tags": ["Referrals"],
                "summary": "List referrals",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Referrals"],
                "summary": "Create referral",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/referrals/{id}": {
            "get": {
                "tags": ["Referrals"],
                "summary": "Get referral",
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["Referrals"],
                "summary": "Update referral",
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Referrals"],
                "summary": "Move referral to the recycle bin",
                "responses": {"204": {"description": "Moved to recycle bin"}}
            }
        },
        "/payments": {
            "get": {
                "tags": ["Payments"],
                "summary": "List payments",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Payments"],
                "summary": "Create payment",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/payments/{id}": {
            "get": {
                "tags": ["Payments"],
                "summary": "Get payment",
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["Payments"],
                "summary": "Update payment",
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Payments"],
                "summary": "Move payment to the recycle bin",
                "responses": {"204": {"description": "Moved to recycle bin"}}
            }
        },
        "/recycle-bin": {
            "get": {
                "tags": ["Recycle Bin"],
                "summary": "List recycle bin records",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/recycle-bin/{id}/restore": {
            "post": {
                "tags": ["Recycle Bin"],
                "summary": "Restore a deleted record",
                "responses": {
                    "200": {"description": "Restored"},
                    "409": {"description": "Already restored, purged or conflicting"}
                }
            }
        },
        "/recycle-bin/{id}": {
            "delete": {
                "tags": ["Recycle Bin"],
                "summary": "Permanently delete a record",
                "responses": {
                    "204": {"description": "Purged"},
                    "409": {"description": "Already restored or purged"}
                }
            }
        },
        "/audit-logs": {
            "get": {
                "tags": ["Audit"],
                "summary": "List audit log entries",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Users"],
                "summary": "Create user",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Duplicate email"}}
            }
        },
        "/users/{id}/reset-password": {
            "post": {
                "tags": ["Users"],
                "summary": "Reset user password",
                "responses": {"204": {"description": "Password reset"}}
            }
        },
        "/users/{id}": {
            "get": {
                "tags": ["Users"],
                "summary": "Get user",
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["Users"],
                "summary": "Update user",
                "responses": {"200": {"description": "OK"}, "409": {"description": "Last privileged user"}}
            },
            "delete": {
                "tags": ["Users"],
                "summary": "Delete user permanently",
                "responses": {"204": {"description": "Deleted"}, "409": {"description": "Last privileged user"}}
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Dashboard summary",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/reports/{kind}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Generate report",
                "responses": {"200": {"description": "File download"}, "400": {"description": "Unknown kind or format"}}
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
