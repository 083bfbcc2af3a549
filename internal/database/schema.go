// internal/database/schema.go
package database

import (
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table layouts applied by Migrate. Column order matters: foreign keys and
// indexes below reference columns by position.
var (
	UsersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "email", Type: field.TypeString, Unique: true, Size: 254},
		{Name: "password_hash", Type: field.TypeString},
		{Name: "is_active", Type: field.TypeBool, Default: true},
		{Name: "is_staff", Type: field.TypeBool, Default: false},
		{Name: "is_superuser", Type: field.TypeBool, Default: false},
		{Name: "last_login", Type: field.TypeTime, Nullable: true},
		{Name: "refresh_token", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "refresh_token_expires_at", Type: field.TypeTime, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	UsersTable = &schema.Table{
		Name:       "users",
		Columns:    UsersColumns,
		PrimaryKey: []*schema.Column{UsersColumns[0]},
	}

	ProfilesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "user_id", Type: field.TypeInt64, Unique: true},
		{Name: "first_name", Type: field.TypeString, Size: 150, Default: ""},
		{Name: "last_name", Type: field.TypeString, Size: 150, Default: ""},
		{Name: "phone_number", Type: field.TypeString, Size: 11, Default: ""},
		{Name: "birth_date", Type: field.TypeTime, Nullable: true, SchemaType: map[string]string{dialect.Postgres: "date"}},
		{Name: "bio", Type: field.TypeString, Size: 500, Default: ""},
		{Name: "avatar", Type: field.TypeString, Size: 255, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	ProfilesTable = &schema.Table{
		Name:       "profiles",
		Columns:    ProfilesColumns,
		PrimaryKey: []*schema.Column{ProfilesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "profiles_users_profile",
				Columns:    []*schema.Column{ProfilesColumns[1]},
				RefColumns: []*schema.Column{UsersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	TagsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "profile_id", Type: field.TypeInt64},
		{Name: "name", Type: field.TypeString, Size: 30},
	}
	TagsTable = &schema.Table{
		Name:       "tags",
		Columns:    TagsColumns,
		PrimaryKey: []*schema.Column{TagsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "tags_profiles_tags",
				Columns:    []*schema.Column{TagsColumns[1]},
				RefColumns: []*schema.Column{ProfilesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		// Deliberately not unique: per-profile name uniqueness is checked case-insensitively by the tag service.
		Indexes: []*schema.Index{
			{
				Name:    "tag_profile_id_name",
				Unique:  false,
				Columns: []*schema.Column{TagsColumns[1], TagsColumns[2]},
			},
		},
	}

	TodosColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "profile_id", Type: field.TypeInt64},
		{Name: "title", Type: field.TypeString, Size: 200},
		{Name: "description", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "priority", Type: field.TypeInt16, Default: 2},
		{Name: "is_done", Type: field.TypeBool, Default: false},
		{Name: "due_date", Type: field.TypeTime, Nullable: true},
		{Name: "completed_at", Type: field.TypeTime, Nullable: true},
		{Name: "archived", Type: field.TypeBool, Default: false},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	TodosTable = &schema.Table{
		Name:       "todos",
		Columns:    TodosColumns,
		PrimaryKey: []*schema.Column{TodosColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "todos_profiles_todos",
				Columns:    []*schema.Column{TodosColumns[1]},
				RefColumns: []*schema.Column{ProfilesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "todo_profile_id_is_done_archived",
				Unique:  false,
				Columns: []*schema.Column{TodosColumns[1], TodosColumns[5], TodosColumns[8]},
			},
			{
				Name:    "todo_due_date",
				Unique:  false,
				Columns: []*schema.Column{TodosColumns[6]},
			},
		},
	}

	TodoTagsColumns = []*schema.Column{
		{Name: "todo_id", Type: field.TypeInt64},
		{Name: "tag_id", Type: field.TypeInt64},
	}
	TodoTagsTable = &schema.Table{
		Name:       "todo_tags",
		Columns:    TodoTagsColumns,
		PrimaryKey: []*schema.Column{TodoTagsColumns[0], TodoTagsColumns[1]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "todo_tags_todo_id",
				Columns:    []*schema.Column{TodoTagsColumns[0]},
				RefColumns: []*schema.Column{TodosColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "todo_tags_tag_id",
				Columns:    []*schema.Column{TodoTagsColumns[1]},
				RefColumns: []*schema.Column{TagsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	AttachmentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "todo_id", Type: field.TypeInt64},
		{Name: "file", Type: field.TypeString, Size: 255},
		{Name: "original_name", Type: field.TypeString, Size: 255, Default: ""},
		{Name: "size", Type: field.TypeInt64, Default: 0},
		{Name: "content_type", Type: field.TypeString, Size: 127, Default: ""},
		{Name: "uploaded_at", Type: field.TypeTime},
	}
	AttachmentsTable = &schema.Table{
		Name:       "attachments",
		Columns:    AttachmentsColumns,
		PrimaryKey: []*schema.Column{AttachmentsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "attachments_todos_attachments",
				Columns:    []*schema.Column{AttachmentsColumns[1]},
				RefColumns: []*schema.Column{TodosColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	Tables = []*schema.Table{
		UsersTable,
		ProfilesTable,
		TagsTable,
		TodosTable,
		TodoTagsTable,
		AttachmentsTable,
	}
)

func init() {
	ProfilesTable.ForeignKeys[0].RefTable = UsersTable
	TagsTable.ForeignKeys[0].RefTable = ProfilesTable
	TodosTable.ForeignKeys[0].RefTable = ProfilesTable
	TodoTagsTable.ForeignKeys[0].RefTable = TodosTable
	TodoTagsTable.ForeignKeys[1].RefTable = TagsTable
	AttachmentsTable.ForeignKeys[0].RefTable = TodosTable
}
