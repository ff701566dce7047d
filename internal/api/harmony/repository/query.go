package harmonyRepository

const queryInsertCompletedSession = `
	INSERT INTO harmony_session_archive
		(
		id,
		user_id,
		target_emotion,
		difficulty_level,
		total_detections,
		target_matches,
		accuracy_percentage,
		average_confidence,
		session_score,
		duration_ms,
		completed_at,
		created_at
		)
	VALUES
		(
		:id,
		:user_id,
		:target_emotion,
		:difficulty_level,
		:total_detections,
		:target_matches,
		:accuracy_percentage,
		:average_confidence,
		:session_score,
		:duration_ms,
		:completed_at,
		:created_at
		)
	ON CONFLICT (id) DO UPDATE SET
		total_detections = EXCLUDED.total_detections,
		target_matches = EXCLUDED.target_matches,
		accuracy_percentage = EXCLUDED.accuracy_percentage,
		average_confidence = EXCLUDED.average_confidence,
		session_score = EXCLUDED.session_score,
		duration_ms = EXCLUDED.duration_ms,
		completed_at = EXCLUDED.completed_at`
