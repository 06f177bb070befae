package migrate

import (
	"context"
	"time"

	"github.com/slugger-analytics/clubhouse-migrate/internal/source"
)

// Per-table insert statements. Column names follow the destination schema the
// lambda API serves; ids are assigned by the destination and captured with
// RETURNING where dependents need them.
const (
	insertTeamSQL = `
		INSERT INTO clubhouse_teams (team_name, created_at)
		VALUES ($1, $2)
		RETURNING id`

	insertUserSQL = `
		INSERT INTO clubhouse_users
		(slugger_user_id, user_name, user_role, team_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	insertTaskSQL = `
		INSERT INTO clubhouse_tasks
		(user_id, task_name, task_description, task_complete,
		 task_category, task_type, task_date, task_time,
		 is_repeating, repeating_day, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	insertGameSQL = `
		INSERT INTO clubhouse_games
		(home_team_id, away_team_id, date, time, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	insertMealSQL = `
		INSERT INTO clubhouse_meals
		(game_id, pre_game_snack, post_game_meal, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	insertInventorySQL = `
		INSERT INTO clubhouse_inventory
		(team_id, meal_id, inventory_type, inventory_item,
		 current_stock, required_stock, unit, purchase_link,
		 note, price_per_unit, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
)

// nullable returns the raw field value, or nil when the field is absent or null.
func nullable(r source.Row, key string) any {
	if v, ok := r[key]; ok && v != nil {
		return v
	}
	return nil
}

// recordMapping stores the destination id assigned to a migrated row.
// A row without a source id cannot be referenced by dependents, so the
// mapping is skipped with a warning rather than failing the row.
func (e *Engine) recordMapping(km *KeyMap, row source.Row, newID int64, label string) {
	oldID, ok := row.Int64("id")
	if !ok {
		e.logger.Warn("source row has no id, mapping not recorded", "kind", km.Kind(), "row", label)
		return
	}
	if err := km.Put(oldID, newID); err != nil {
		e.logger.Error("conflicting source id", "kind", km.Kind(), "err", err)
	}
}

// migrateTeams migrates the teams table. Teams have no foreign dependencies.
func (e *Engine) migrateTeams(ctx context.Context, batch Batch, rows []source.Row, teams *KeyMap, start time.Time) TableResult {
	result := TableResult{Kind: "teams", Attempted: len(rows)}

	for _, row := range rows {
		name := row.String("team_name")

		newID, err := batch.InsertReturningID(ctx, insertTeamSQL,
			nullable(row, "team_name"),
			row.Time("created_at", start),
		)
		if err != nil {
			result.Failed++
			e.logger.Error("failed to migrate team", "team_name", name, "err", err)
			continue
		}

		e.recordMapping(teams, row, newID, name)
		result.Migrated++
	}

	return result
}

// migrateUsers migrates the users table, linking each row to its SLUGGER
// identity by normalized email. Rows whose email has no directory entry are
// skipped and reported in the Unmapped list; the team reference is soft and
// becomes null when the team was never migrated.
func (e *Engine) migrateUsers(ctx context.Context, batch Batch, rows []source.Row, identity IdentityMap, teams, users *KeyMap, start time.Time) TableResult {
	result := TableResult{Kind: "users", Attempted: len(rows)}

	for _, row := range rows {
		email := NormalizeEmail(row.String("email"))

		token, ok := identity.Resolve(email)
		if !ok {
			result.Skipped++
			result.Unmapped = append(result.Unmapped, email)
			e.logger.Warn("no SLUGGER user found for email", "email", email, "user_name", row.String("user_name"))
			continue
		}

		var teamID any
		if oldTeam, ok := row.Int64("team_id"); ok {
			if newTeam, ok := teams.Get(oldTeam); ok {
				teamID = newTeam
			}
		}

		newID, err := batch.InsertReturningID(ctx, insertUserSQL,
			token,
			nullable(row, "user_name"),
			nullable(row, "user_role"),
			teamID,
			row.Time("created_at", start),
		)
		if err != nil {
			result.Failed++
			e.logger.Error("failed to migrate user", "user_name", row.String("user_name"), "err", err)
			continue
		}

		e.recordMapping(users, row, newID, email)
		result.Migrated++
	}

	return result
}

// migrateTasks migrates the tasks table. The owning user is a hard
// dependency: a task whose user was never migrated is dropped.
func (e *Engine) migrateTasks(ctx context.Context, batch Batch, rows []source.Row, users *KeyMap, start time.Time) TableResult {
	result := TableResult{Kind: "tasks", Attempted: len(rows)}

	for _, row := range rows {
		oldUser, ok := row.Int64("user_id")
		if !ok {
			result.Skipped++
			e.logger.Debug("skipping task without user_id", "task_name", row.String("task_name"))
			continue
		}
		newUser, ok := users.Get(oldUser)
		if !ok {
			result.Skipped++
			e.logger.Debug("skipping task, user not migrated", "user_id", oldUser)
			continue
		}

		err := batch.Insert(ctx, insertTaskSQL,
			newUser,
			nullable(row, "task_name"),
			nullable(row, "task_description"),
			row.Bool("task_complete"),
			nullable(row, "task_category"),
			nullable(row, "task_type"),
			nullable(row, "task_date"),
			nullable(row, "task_time"),
			row.Bool("is_repeating"),
			nullable(row, "repeating_day"),
			row.Time("created_at", start),
		)
		if err != nil {
			result.Failed++
			e.logger.Error("failed to migrate task", "task_name", row.String("task_name"), "err", err)
			continue
		}

		result.Migrated++
	}

	return result
}

// migrateGames migrates the games table. Both team references are hard
// dependencies: a game cannot exist with a missing side.
func (e *Engine) migrateGames(ctx context.Context, batch Batch, rows []source.Row, teams, games *KeyMap, start time.Time) TableResult {
	result := TableResult{Kind: "games", Attempted: len(rows)}

	for _, row := range rows {
		oldHome, hasHome := row.Int64("home_team_id")
		oldAway, hasAway := row.Int64("away_team_id")

		newHome, homeOK := int64(0), false
		if hasHome {
			newHome, homeOK = teams.Get(oldHome)
		}
		newAway, awayOK := int64(0), false
		if hasAway {
			newAway, awayOK = teams.Get(oldAway)
		}

		if !homeOK || !awayOK {
			result.Skipped++
			e.logger.Warn("skipping game, team not migrated", "home_team_id", oldHome, "away_team_id", oldAway)
			continue
		}

		newID, err := batch.InsertReturningID(ctx, insertGameSQL,
			newHome,
			newAway,
			nullable(row, "date"),
			nullable(row, "time"),
			row.Time("created_at", start),
		)
		if err != nil {
			result.Failed++
			e.logger.Error("failed to migrate game", "home_team_id", oldHome, "away_team_id", oldAway, "err", err)
			continue
		}

		e.recordMapping(games, row, newID, row.String("date"))
		result.Migrated++
	}

	return result
}

// migrateMeals migrates the meals table. The owning game is a hard dependency.
func (e *Engine) migrateMeals(ctx context.Context, batch Batch, rows []source.Row, games, meals *KeyMap, start time.Time) TableResult {
	result := TableResult{Kind: "meals", Attempted: len(rows)}

	for _, row := range rows {
		oldGame, ok := row.Int64("game_id")
		if !ok {
			result.Skipped++
			e.logger.Warn("skipping meal without game_id")
			continue
		}
		newGame, ok := games.Get(oldGame)
		if !ok {
			result.Skipped++
			e.logger.Warn("skipping meal, game not migrated", "game_id", oldGame)
			continue
		}

		newID, err := batch.InsertReturningID(ctx, insertMealSQL,
			newGame,
			nullable(row, "pre_game_snack"),
			nullable(row, "post_game_meal"),
			row.Time("created_at", start),
		)
		if err != nil {
			result.Failed++
			e.logger.Error("failed to migrate meal", "game_id", oldGame, "err", err)
			continue
		}

		e.recordMapping(meals, row, newID, row.String("pre_game_snack"))
		result.Migrated++
	}

	return result
}

// migrateInventory migrates the inventory table. Team and meal references are
// both soft: an unresolved reference becomes null and the item is migrated
// standalone, unlike the hard-skip policy for tasks, games and meals.
func (e *Engine) migrateInventory(ctx context.Context, batch Batch, rows []source.Row, teams, meals *KeyMap, start time.Time) TableResult {
	result := TableResult{Kind: "inventory", Attempted: len(rows)}

	for _, row := range rows {
		var teamID any
		if oldTeam, ok := row.Int64("team_id"); ok {
			if newTeam, ok := teams.Get(oldTeam); ok {
				teamID = newTeam
			}
		}

		var mealID any
		if oldMeal, ok := row.Int64("meal_id"); ok {
			if newMeal, ok := meals.Get(oldMeal); ok {
				mealID = newMeal
			}
		}

		err := batch.Insert(ctx, insertInventorySQL,
			teamID,
			mealID,
			nullable(row, "inventory_type"),
			nullable(row, "inventory_item"),
			nullable(row, "current_stock"),
			nullable(row, "required_stock"),
			nullable(row, "unit"),
			nullable(row, "purchase_link"),
			nullable(row, "note"),
			nullable(row, "price_per_unit"),
			row.Time("created_at", start),
		)
		if err != nil {
			result.Failed++
			e.logger.Error("failed to migrate inventory item", "inventory_item", row.String("inventory_item"), "err", err)
			continue
		}

		result.Migrated++
	}

	return result
}
